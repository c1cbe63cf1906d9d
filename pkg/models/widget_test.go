package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWidgetTypesAreValid(t *testing.T) {
	for _, w := range WidgetTypes() {
		assert.True(t, w.Valid(), "WidgetTypes() returned invalid member %q", w)
		assert.NotEmpty(t, w.Icon())
		assert.NotEmpty(t, w.Description())
	}
}

func TestParseWidgetType(t *testing.T) {
	w, err := ParseWidgetType("Bar")
	require.NoError(t, err)
	assert.Equal(t, WidgetBar, w)

	_, err = ParseWidgetType("Sparkline")
	require.Error(t, err)

	_, err = ParseWidgetType("")
	require.Error(t, err)
}

func TestWhitelistedMethods(t *testing.T) {
	assert.Contains(t, WhitelistedMethods(DoctypeQuery), "fetch_column_values")
	assert.Contains(t, WhitelistedMethods(DoctypeChart), "add_to_dashboard")
	assert.Empty(t, WhitelistedMethods("No Such Doctype"))
}

func TestNewName(t *testing.T) {
	name := NewName("QRY")
	assert.Regexp(t, `^QRY-[0-9a-f]{8}$`, name)
	assert.NotEqual(t, name, NewName("QRY"))
}
