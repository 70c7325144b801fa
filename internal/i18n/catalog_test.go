package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const noTargets = "No target databases were found for publishing."

func TestDefaultCatalogTranslates(t *testing.T) {
	t.Parallel()
	c := Default()

	assert.Equal(t, []string{"en", "da", "de"}, c.Locales())
	assert.Equal(t, "Der blev ikke fundet nogen måldatabaser til publicering.", c.Text("da-DK", noTargets))
	assert.Equal(t, noTargets, c.Text("en", noTargets))
	assert.Equal(t, noTargets, c.Text("fr", noTargets))
	assert.Equal(t, noTargets, c.Text("", noTargets))
	assert.Equal(t, noTargets, c.Text("not a tag!", noTargets))
}

func TestTextFillsPlaceholders(t *testing.T) {
	t.Parallel()
	c := Default()

	got := c.Text("de", "Are you sure you want to publish \"{0}\"\nin every language to every publishing target?", "Home")
	assert.Contains(t, got, `"Home"`)
	assert.Contains(t, got, "veröffentlichen")
}

func TestNilCatalogFormats(t *testing.T) {
	t.Parallel()
	var c *Catalog

	assert.Equal(t, "Publish item now: /home", c.Text("de", "Publish item now: {0}", "/home"))
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		args   []any
		want   string
	}{
		{name: "no args", format: "state {0}", want: "state {0}"},
		{name: "ordered", format: "{0} in {1}", args: []any{"Home", "Draft"}, want: "Home in Draft"},
		{name: "repeated", format: "{0}/{0}", args: []any{7}, want: "7/7"},
		{name: "missing arg", format: "{0} {2}", args: []any{"a"}, want: "a {2}"},
		{name: "braces in arg", format: "item {0}", args: []any{"{A1}"}, want: "item {A1}"},
		{name: "unterminated", format: "{0} {", args: []any{"x"}, want: "x {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.format, tt.args...))
		})
	}
}

func TestLoadLayersFileOverEmbedded(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "extra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
locales:
  da:
    "Item not found.": "Ikke fundet."
  sv:
    "Item not found.": "Objektet hittades inte."
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Ikke fundet.", c.Text("da", "Item not found."))
	assert.Equal(t, "Objektet hittades inte.", c.Text("sv", "Item not found."))
	assert.Equal(t, "Elementet bliver publiceret.", c.Text("da", "The item is being published."))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsBadLocale(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("locales:\n  \"!!\":\n    a: b\n"))
	assert.Error(t, err)
}

func TestTextKeepsPercentSigns(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(`
locales:
  de:
    "{0}% of targets done": "{0}% der Ziele erledigt"
`))
	require.NoError(t, err)

	assert.Equal(t, "50% der Ziele erledigt", c.Text("de", "{0}% of targets done", 50))
	assert.Equal(t, "50% of targets done", c.Text("en", "{0}% of targets done", 50))
	assert.Equal(t, "100%d", c.Text("da", "100%d"))
}
