package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/qrmenu/api/internal/model"
)

func TestDefault_ListsEveryChoice(t *testing.T) {
	t.Parallel()

	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, model.DefaultBackground, c.DefaultBackground)
	assert.Len(t, c.Fonts, 4)
	assert.Len(t, c.FontColors, 5)
	assert.Len(t, c.Dietary, 3)
	assert.Len(t, c.Templates, 11)
}

func TestTemplate_CaseInsensitive(t *testing.T) {
	t.Parallel()

	c, err := Default()
	require.NoError(t, err)

	tpl, ok := c.Template("  neon GRID ")
	require.True(t, ok)
	assert.Equal(t, "Neon Grid", tpl.Name)
	assert.Equal(t, model.Background("bg-black text-cyan-400 border-2 border-cyan-500 shadow-lg shadow-cyan-500/20"), tpl.Background)

	_, ok = c.Template("Solar Flare")
	assert.False(t, ok)
}

func TestLoad_EmptyPathUsesEmbedded(t *testing.T) {
	t.Parallel()

	c, err := Load("")
	require.NoError(t, err)

	_, ok := c.Template("Cyber Nebula")
	assert.True(t, ok)
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "styles.yaml")
	data := []byte(`
fonts:
  - value: font-mono
    label: Mono
templates:
  - name: Midnight
    background: bg-black
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Fonts, 1)

	tpl, ok := c.Template("midnight")
	require.True(t, ok)
	assert.Equal(t, model.Background("bg-black"), tpl.Background)
}

func TestCatalog_Background(t *testing.T) {
	t.Parallel()

	embedded, err := Default()
	require.NoError(t, err)
	custom, err := Parse([]byte(`
default_background: bg-black
templates:
  - name: Midnight
    background: bg-black
`))
	require.NoError(t, err)
	unset, err := Parse([]byte(`
templates:
  - name: Midnight
    background: bg-black
`))
	require.NoError(t, err)
	var none *Catalog

	assert.Equal(t, embedded.DefaultBackground, embedded.Background())
	assert.Equal(t, model.Background("bg-black"), custom.Background())
	assert.Equal(t, model.DefaultBackground, unset.Background())
	assert.Equal(t, model.DefaultBackground, none.Background())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"unknown key":     "templates:\n  - name: A\n    background: bg-black\ncolours: []\n",
		"no templates":    "fonts: []\n",
		"unknown font":    "fonts:\n  - value: font-comic\ntemplates:\n  - name: A\n    background: bg-black\n",
		"unknown dietary": "dietary:\n  - value: keto\ntemplates:\n  - name: A\n    background: bg-black\n",
		"duplicate name":  "templates:\n  - name: A\n    background: bg-black\n  - name: a\n    background: bg-white\n",
		"image template":  "templates:\n  - name: A\n    background: https://example.com/a.jpg\n",
		"bad token":       "templates:\n  - name: A\n    background: \"bg-black;}\"\n",
		"not yaml":        "templates: [",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}
