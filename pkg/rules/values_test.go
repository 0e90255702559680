package rules

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/repatch/pkg/errors"
)

var macFormat = regexp.MustCompile(`^([0-9A-F]{2}:){5}[0-9A-F]{2}$`)

func TestValues_GeneratedOncePerKey(t *testing.T) {
	v := NewValues(nil)

	first := v.UUID("machine")
	assert.Equal(t, first, v.UUID("machine"))
	assert.NotEqual(t, first, v.UUID("session"))
	assert.Len(t, first, 36)

	mac := v.MAC("nic")
	assert.Equal(t, mac, v.MAC("nic"))
	assert.Regexp(t, macFormat, mac)

	assert.Equal(t, []string{"machine", "nic", "session"}, v.Keys())
}

func TestValues_OverridesWin(t *testing.T) {
	v := NewValues(map[string]string{"machine": "fixed", "name": "box"})

	assert.Equal(t, "fixed", v.UUID("machine"))

	name, err := v.Var("name")
	require.NoError(t, err)
	assert.Equal(t, "box", name)

	assert.Equal(t, map[string]string{"machine": "fixed", "name": "box"}, v.Used())
}

func TestValues_MissingVar(t *testing.T) {
	v := NewValues(nil)

	_, err := v.Var("name")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, errors.GetHint(err), "--var name=")
	assert.Empty(t, v.Used())
}

func TestValues_UsedIsACopy(t *testing.T) {
	v := NewValues(nil)
	v.UUID("a")

	used := v.Used()
	used["a"] = "changed"
	assert.NotEqual(t, "changed", v.UUID("a"))
}

func TestRandomMAC_SkipsReserved(t *testing.T) {
	assert.True(t, reservedMACs[formatMAC([]byte{0, 0, 0, 0, 0, 0})])
	assert.True(t, reservedMACs[formatMAC([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff})])
	assert.True(t, reservedMACs[formatMAC([]byte{0xac, 0xde, 0x48, 0x00, 0x11, 0x22})])

	for i := 0; i < 50; i++ {
		mac := randomMAC()
		assert.Regexp(t, macFormat, mac)
		assert.False(t, reservedMACs[mac])
	}
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"a=1", " b =x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, got)

	for _, bad := range []string{"novalue", "=v"} {
		_, err := ParseAssignments([]string{bad})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput), bad)
	}
}

func TestValues_Placeholder(t *testing.T) {
	v := NewValues(map[string]string{"given": "yes"}).WithPlaceholder("x")

	got, err := v.Var("missing")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	got, err = v.Var("given")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)
	assert.Equal(t, map[string]string{"given": "yes"}, v.Used())
}
