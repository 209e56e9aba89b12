// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNames(t *testing.T) {
	l, err := Parse("explicit-null")
	require.NoError(t, err)
	assert.Equal(t, ExplicitNull, l)

	l, err = Parse("implicit-null")
	require.NoError(t, err)
	assert.Equal(t, ImplicitNull, l)
}

func TestParseDecimal(t *testing.T) {
	l, err := Parse("100")
	require.NoError(t, err)
	assert.Equal(t, Label(100), l)

	// Parsing is total over the 20-bit domain, reserved values included.
	l, err = Parse("4")
	require.NoError(t, err)
	assert.Equal(t, Label(4), l)

	l, err = Parse("1048575")
	require.NoError(t, err)
	assert.Equal(t, Max, l)
}

func TestParseRejects(t *testing.T) {
	_, err := Parse("1048576")
	assert.Error(t, err)

	_, err = Parse("pop")
	assert.Error(t, err)

	_, err = Parse("-1")
	assert.Error(t, err)
}

func TestParseUserRange(t *testing.T) {
	_, err := ParseUser("16")
	assert.NoError(t, err)

	_, err = ParseUser("15")
	assert.Error(t, err)

	// The null labels must be spelled by name on the config surface.
	_, err = ParseUser("0")
	assert.Error(t, err)
	_, err = ParseUser("3")
	assert.Error(t, err)

	l, err := ParseUser("implicit-null")
	require.NoError(t, err)
	assert.Equal(t, ImplicitNull, l)
}

func TestClassify(t *testing.T) {
	assert.True(t, ExplicitNull.IsReserved())
	assert.True(t, ImplicitNull.IsImplicitNull())
	assert.True(t, Label(15).IsReserved())
	assert.False(t, Label(16).IsReserved())
	assert.True(t, Label(16).IsUserRange())
	assert.False(t, Label(15).IsUserRange())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "implicit-null", ImplicitNull.String())
	assert.Equal(t, "imp-null", ImplicitNull.Short())
	assert.Equal(t, "explicit-null", ExplicitNull.String())
	assert.Equal(t, "exp-null", ExplicitNull.Short())
	assert.Equal(t, "100", Label(100).String())
	assert.Equal(t, "100", Label(100).Short())
}

func TestOptional(t *testing.T) {
	assert.False(t, None().Present())
	assert.Equal(t, "none", None().String())

	o := Some(Label(100))
	v, ok := o.Get()
	assert.True(t, ok)
	assert.Equal(t, Label(100), v)
	assert.True(t, o.Is(100))
	assert.False(t, o.Is(200))

	assert.True(t, o.Equal(Some(Label(100))))
	assert.False(t, o.Equal(Some(Label(200))))
	assert.False(t, o.Equal(None()))
	assert.True(t, None().Equal(None()))
}
