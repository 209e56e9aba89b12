// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package label models the 20-bit MPLS label value domain, including the
// reserved range and the textual grammar used by the configuration surface.
package label

import (
	"strconv"

	"grimm.is/mplsd/internal/errors"
)

// Label is an MPLS label value in the 20-bit domain.
type Label uint32

const (
	// ExplicitNull is the IPv4 Explicit Null label.
	ExplicitNull Label = 0

	// ImplicitNull signals the upstream LSR to pop before sending; it is
	// never programmed as an incoming label.
	ImplicitNull Label = 3

	// MinUser is the smallest label value an operator may configure.
	// Values below it are reserved and only enter via their names or from
	// protocol inputs.
	MinUser Label = 16

	// Max is the largest value representable in the 20-bit label field.
	Max Label = 1<<20 - 1
)

// IsExplicitNull reports whether l is the IPv4 Explicit Null label.
func (l Label) IsExplicitNull() bool { return l == ExplicitNull }

// IsImplicitNull reports whether l is the Implicit Null label.
func (l Label) IsImplicitNull() bool { return l == ImplicitNull }

// IsReserved reports whether l falls in the reserved range 0-15.
func (l Label) IsReserved() bool { return l < MinUser }

// IsUserRange reports whether l may be entered as a plain decimal by the
// operator.
func (l Label) IsUserRange() bool { return l >= MinUser && l <= Max }

// Valid reports whether l fits the 20-bit label field.
func (l Label) Valid() bool { return l <= Max }

// String returns the long display form: "explicit-null", "implicit-null"
// or the decimal value.
func (l Label) String() string {
	switch l {
	case ExplicitNull:
		return "explicit-null"
	case ImplicitNull:
		return "implicit-null"
	default:
		return strconv.FormatUint(uint64(l), 10)
	}
}

// Short returns the brief display form used in table output.
func (l Label) Short() string {
	switch l {
	case ExplicitNull:
		return "exp-null"
	case ImplicitNull:
		return "imp-null"
	default:
		return strconv.FormatUint(uint64(l), 10)
	}
}

// Parse converts the textual form to a label. Any decimal inside the
// 20-bit domain is accepted; range policy for operator input lives in
// ParseUser.
func Parse(s string) (Label, error) {
	switch s {
	case "explicit-null":
		return ExplicitNull, nil
	case "implicit-null":
		return ImplicitNull, nil
	}

	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errors.Errorf(errors.KindValidation, "malformed label %q", s)
	}
	l := Label(v)
	if !l.Valid() {
		return 0, errors.Errorf(errors.KindValidation, "label %d out of range", v)
	}
	return l, nil
}

// ParseUser parses operator input: the named null labels, or a decimal
// constrained to 16-1048575. Labels 0 and 3 must be spelled by name.
func ParseUser(s string) (Label, error) {
	l, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if l.IsExplicitNull() || l.IsImplicitNull() {
		switch s {
		case "explicit-null", "implicit-null":
			return l, nil
		}
		return 0, errors.Errorf(errors.KindValidation, "label %d must be entered by name", uint32(l))
	}
	if !l.IsUserRange() {
		return 0, errors.Errorf(errors.KindValidation, "label %d outside user range", uint32(l))
	}
	return l, nil
}
