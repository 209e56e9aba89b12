// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package kernel

import (
	"sync"

	"grimm.is/mplsd/internal/errors"
	"grimm.is/mplsd/internal/iface"
	"grimm.is/mplsd/internal/label"
)

// SimNHLFE is the recorded outgoing treatment of an installed NHLFE.
type SimNHLFE struct {
	Nexthop  string
	Iface    string
	Pop      bool        // pop-only, no push
	Push     label.Label // valid when !Pop
}

// SimDriver implements Driver against in-memory maps. It backs tests and
// the simulator, and counts calls so tests can assert on programmed state
// and call counts. ILM calls for Implicit Null are no-ops and are not
// counted.
type SimDriver struct {
	mu     sync.Mutex
	ifaces *iface.Table

	ILMs        map[label.Label]bool
	NHLFEs      map[Handle]SimNHLFE
	XCs         map[label.Label]Handle
	Labelspaces map[string]int

	nextHandle Handle
	calls      map[string]int

	// Fail* force the next matching call to return the given error once.
	FailILMInstall   error
	FailNHLFEInstall error
	FailXCInstall    error
}

// NewSimDriver creates a sim driver resolving interfaces from ifaces.
func NewSimDriver(ifaces *iface.Table) *SimDriver {
	return &SimDriver{
		ifaces:      ifaces,
		ILMs:        make(map[label.Label]bool),
		NHLFEs:      make(map[Handle]SimNHLFE),
		XCs:         make(map[label.Label]Handle),
		Labelspaces: make(map[string]int),
		calls:       make(map[string]int),
	}
}

func (d *SimDriver) count(op string) { d.calls[op]++ }

// Calls returns how many times the named operation ran.
func (d *SimDriver) Calls(op string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls[op]
}

// TotalCalls returns the number of driver calls across all operations.
func (d *SimDriver) TotalCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, c := range d.calls {
		n += c
	}
	return n
}

// ResetCalls clears the call counters.
func (d *SimDriver) ResetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = make(map[string]int)
}

func (d *SimDriver) SetInterfaceLabelspace(ifc *iface.Interface, ls int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count("labelspace")

	if ls < 0 {
		ls = -1
	}
	d.Labelspaces[ifc.Name] = ls
	return nil
}

func (d *SimDriver) ILMInstall(l label.Label) error {
	if l.IsImplicitNull() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.count("ilm_install")

	if err := d.FailILMInstall; err != nil {
		d.FailILMInstall = nil
		return err
	}
	d.ILMs[l] = true
	return nil
}

func (d *SimDriver) ILMRemove(l label.Label) error {
	if l.IsImplicitNull() {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.count("ilm_remove")

	delete(d.ILMs, l)
	return nil
}

func (d *SimDriver) NHLFEInstall(lsp *LSP) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count("nhlfe_install")

	if err := d.FailNHLFEInstall; err != nil {
		d.FailNHLFEInstall = nil
		return err
	}

	if lsp.Iface == nil {
		ifc, ok := d.ifaces.LookupAddr(lsp.Nexthop)
		if !ok {
			return errors.Errorf(errors.KindNotFound, "no interface for nexthop %s", lsp.Nexthop)
		}
		lsp.Iface = ifc
	}

	d.nextHandle++
	lsp.Handle = d.nextHandle

	rec := SimNHLFE{
		Nexthop: lsp.Nexthop.String(),
		Iface:   lsp.Iface.Name,
	}
	if lsp.OutLabel.IsImplicitNull() {
		rec.Pop = true
	} else {
		rec.Push = lsp.OutLabel
	}
	d.NHLFEs[lsp.Handle] = rec
	return nil
}

func (d *SimDriver) NHLFERemove(lsp *LSP) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count("nhlfe_remove")

	if lsp.Handle == 0 {
		return errors.New(errors.KindNotFound, "NHLFE not installed")
	}
	delete(d.NHLFEs, lsp.Handle)
	lsp.Handle = 0
	return nil
}

func (d *SimDriver) XCInstall(in label.Label, lsp *LSP) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count("xc_install")

	if err := d.FailXCInstall; err != nil {
		d.FailXCInstall = nil
		return err
	}
	if lsp.Handle == 0 {
		return errors.New(errors.KindNotFound, "NHLFE not installed")
	}
	d.XCs[in] = lsp.Handle
	return nil
}

func (d *SimDriver) XCRemove(in label.Label, lsp *LSP) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.count("xc_remove")

	if _, ok := d.XCs[in]; !ok {
		return errors.Errorf(errors.KindNotFound, "no crossconnect for label %s", in)
	}
	delete(d.XCs, in)
	return nil
}

func (d *SimDriver) Close() error { return nil }
