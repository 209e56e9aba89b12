// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package label

// Optional is a label that may be explicitly absent. It replaces the
// out-of-band sentinel convention: a binding field either carries a
// 20-bit value or carries nothing.
type Optional struct {
	value   Label
	present bool
}

// Some returns a present Optional holding l.
func Some(l Label) Optional { return Optional{value: l, present: true} }

// None returns the absent Optional.
func None() Optional { return Optional{} }

// Present reports whether a value is set.
func (o Optional) Present() bool { return o.present }

// Get returns the value and whether it is set.
func (o Optional) Get() (Label, bool) { return o.value, o.present }

// Value returns the label; only meaningful when Present.
func (o Optional) Value() Label { return o.value }

// Is reports whether o holds exactly l.
func (o Optional) Is(l Label) bool { return o.present && o.value == l }

// Equal reports whether both optionals agree on presence and value.
func (o Optional) Equal(other Optional) bool {
	if o.present != other.present {
		return false
	}
	return !o.present || o.value == other.value
}

// String renders the long form, or "none" when absent.
func (o Optional) String() string {
	if !o.present {
		return "none"
	}
	return o.value.String()
}

// MarshalJSON renders the long label form, or null when absent.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte("null"), nil
	}
	return []byte(`"` + o.value.String() + `"`), nil
}
