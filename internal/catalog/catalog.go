// Package catalog loads the fonts, colors, dietary tags, and background
// templates offered to menu builders.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forgo/qrmenu/api/internal/model"
)

//go:embed styles.yaml
var defaultStyles []byte

// Option is one selectable value with its display label
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Template is a named background style
type Template struct {
	Name       string           `yaml:"name" json:"name"`
	Background model.Background `yaml:"background" json:"background"`
}

// Catalog is the full set of styling choices
type Catalog struct {
	DefaultBackground model.Background `yaml:"default_background" json:"defaultBackground"`
	Fonts             []Option         `yaml:"fonts" json:"fonts"`
	FontColors        []Option         `yaml:"font_colors" json:"fontColors"`
	Dietary           []Option         `yaml:"dietary" json:"dietary"`
	Templates         []Template       `yaml:"templates" json:"templates"`
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultStyles)
}

// Load reads a catalog from path, or the embedded catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading style catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a YAML catalog. Unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parsing style catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []error

	if c.DefaultBackground != "" && !c.DefaultBackground.IsValid() {
		errs = append(errs, fmt.Errorf("default_background %q is not a valid style token", c.DefaultBackground))
	}
	for _, f := range c.Fonts {
		if !model.Font(f.Value).IsValid() {
			errs = append(errs, fmt.Errorf("unsupported font %q", f.Value))
		}
	}
	for _, fc := range c.FontColors {
		if !model.FontColor(fc.Value).IsValid() {
			errs = append(errs, fmt.Errorf("unsupported font color %q", fc.Value))
		}
	}
	for _, d := range c.Dietary {
		if d.Value == "" || !model.DietaryTag(d.Value).IsValid() {
			errs = append(errs, fmt.Errorf("unsupported dietary tag %q", d.Value))
		}
	}

	if len(c.Templates) == 0 {
		errs = append(errs, errors.New("at least one template is required"))
	}
	seen := make(map[string]bool, len(c.Templates))
	for _, t := range c.Templates {
		key := normalize(t.Name)
		switch {
		case key == "":
			errs = append(errs, errors.New("template name is required"))
		case seen[key]:
			errs = append(errs, fmt.Errorf("duplicate template %q", t.Name))
		}
		seen[key] = true
		if t.Background == "" || t.Background.IsImage() || !t.Background.IsValid() {
			errs = append(errs, fmt.Errorf("template %q: background must be a style token", t.Name))
		}
	}

	return errors.Join(errs...)
}

// Background is the starting background for new menus. A nil catalog or an
// empty default_background falls back to model.DefaultBackground.
func (c *Catalog) Background() model.Background {
	if c == nil || c.DefaultBackground == "" {
		return model.DefaultBackground
	}
	return c.DefaultBackground
}

// Template looks a template up by name, ignoring case and surrounding space
func (c *Catalog) Template(name string) (Template, bool) {
	key := normalize(name)
	for _, t := range c.Templates {
		if normalize(t.Name) == key {
			return t, true
		}
	}
	return Template{}, false
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
