package model

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// DietaryTag marks a menu item with dietary information
type DietaryTag string

const (
	DietaryNone       DietaryTag = ""
	DietaryVegetarian DietaryTag = "vegetarian"
	DietaryVegan      DietaryTag = "vegan"
	DietarySpicy      DietaryTag = "spicy"
)

// IsValid returns true if the tag is one of the known tags or absent
func (d DietaryTag) IsValid() bool {
	switch d {
	case DietaryNone, DietaryVegetarian, DietaryVegan, DietarySpicy:
		return true
	default:
		return false
	}
}

// Label returns the human-readable tag name
func (d DietaryTag) Label() string {
	switch d {
	case DietaryVegetarian:
		return "Vegetarian"
	case DietaryVegan:
		return "Vegan"
	case DietarySpicy:
		return "Spicy"
	default:
		return ""
	}
}

// Font selects the menu typeface
type Font string

const (
	FontSans    Font = "font-sans"
	FontSerif   Font = "font-serif"
	FontMono    Font = "font-mono"
	FontDisplay Font = "font-display"
)

// IsValid returns true if the font is one of the known fonts
func (f Font) IsValid() bool {
	switch f {
	case FontSans, FontSerif, FontMono, FontDisplay:
		return true
	default:
		return false
	}
}

// FontColor selects the menu text color
type FontColor string

const (
	ColorWhite     FontColor = "text-white"
	ColorLightGray FontColor = "text-gray-300"
	ColorCyan      FontColor = "text-cyan-400"
	ColorPurple    FontColor = "text-purple-400"
	ColorPink      FontColor = "text-pink-400"
)

// IsValid returns true if the color is one of the known colors
func (c FontColor) IsValid() bool {
	switch c {
	case ColorWhite, ColorLightGray, ColorCyan, ColorPurple, ColorPink:
		return true
	default:
		return false
	}
}

// Background is either a style token (utility classes) or an image reference
type Background string

// DefaultBackground is the builder's starting background
const DefaultBackground Background = "bg-gradient-to-br from-gray-900 to-indigo-900"

var styleTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_:/.#%\-\[\] ]+$`)

// IsImage reports whether the background references an image rather than a style token
func (b Background) IsImage() bool {
	s := string(b)
	return strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "blob:") ||
		strings.HasPrefix(s, "data:image/")
}

// IsValid returns true for image references and well-formed style tokens
func (b Background) IsValid() bool {
	if b.IsImage() {
		return !strings.ContainsAny(string(b), "\"'()<>\\ \n\r\t")
	}
	return styleTokenPattern.MatchString(string(b))
}

// MenuItem is one dish on a menu
type MenuItem struct {
	Name        string     `json:"name"`
	Description string     `json:"desc"`
	Price       float64    `json:"price"`
	Dietary     DietaryTag `json:"dietary,omitempty"`
}

// Menu is the full set of authored content and styling for one published menu
type Menu struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Items       []MenuItem `json:"items"`
	Font        Font       `json:"font"`
	FontColor   FontColor  `json:"fontColor"`
	Background  Background `json:"background"`
	CreatedOn   *time.Time `json:"createdOn,omitempty"`
}

// Styled returns a copy with empty styling fields set to the builder defaults
func (m *Menu) Styled() Menu {
	c := *m
	if c.Font == "" {
		c.Font = FontSans
	}
	if c.FontColor == "" {
		c.FontColor = ColorWhite
	}
	if c.Background == "" {
		c.Background = DefaultBackground
	}
	return c
}

// Content returns a copy of the menu without store-assigned fields
func (m *Menu) Content() Menu {
	c := *m
	c.ID = ""
	c.CreatedOn = nil
	c.Items = append([]MenuItem(nil), m.Items...)
	return c
}

// Business constraints for menus
const (
	MaxMenuTitleLength       = 120
	MaxMenuDescriptionLength = 500
	MaxMenuItems             = 200
	MaxItemNameLength        = 120
	MaxItemDescriptionLength = 300
	MaxBackgroundLength      = 64 << 10
)

// Text that is not valid UTF-8 cannot survive JSON encoding unchanged
const msgInvalidText = "must be valid UTF-8 text"

// Validate checks the item on its own; prefix is prepended to field names
func (i *MenuItem) Validate(prefix string) []FieldError {
	var errors []FieldError

	if strings.TrimSpace(i.Name) == "" {
		errors = append(errors, FieldError{Field: prefix + "name", Message: "name is required"})
	} else if !utf8.ValidString(i.Name) {
		errors = append(errors, FieldError{Field: prefix + "name", Message: msgInvalidText})
	} else if len(i.Name) > MaxItemNameLength {
		errors = append(errors, FieldError{Field: prefix + "name", Message: fmt.Sprintf("name must be at most %d characters", MaxItemNameLength)})
	}

	if !utf8.ValidString(i.Description) {
		errors = append(errors, FieldError{Field: prefix + "desc", Message: msgInvalidText})
	} else if len(i.Description) > MaxItemDescriptionLength {
		errors = append(errors, FieldError{Field: prefix + "desc", Message: fmt.Sprintf("description must be at most %d characters", MaxItemDescriptionLength)})
	}

	if math.IsNaN(i.Price) || math.IsInf(i.Price, 0) || i.Price < 0 {
		errors = append(errors, FieldError{Field: prefix + "price", Message: "price must be a non-negative number"})
	}

	if !i.Dietary.IsValid() {
		errors = append(errors, FieldError{Field: prefix + "dietary", Message: "dietary must be vegetarian, vegan, spicy, or empty"})
	}

	return errors
}

// Validate checks that the menu is publishable and every field is well-formed
func (m *Menu) Validate() []FieldError {
	var errors []FieldError

	if strings.TrimSpace(m.Title) == "" {
		errors = append(errors, FieldError{Field: "title", Message: "title is required"})
	} else if !utf8.ValidString(m.Title) {
		errors = append(errors, FieldError{Field: "title", Message: msgInvalidText})
	} else if len(m.Title) > MaxMenuTitleLength {
		errors = append(errors, FieldError{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxMenuTitleLength)})
	}

	if strings.TrimSpace(m.Description) == "" {
		errors = append(errors, FieldError{Field: "description", Message: "description is required"})
	} else if !utf8.ValidString(m.Description) {
		errors = append(errors, FieldError{Field: "description", Message: msgInvalidText})
	} else if len(m.Description) > MaxMenuDescriptionLength {
		errors = append(errors, FieldError{Field: "description", Message: fmt.Sprintf("description must be at most %d characters", MaxMenuDescriptionLength)})
	}

	switch {
	case len(m.Items) == 0:
		errors = append(errors, FieldError{Field: "items", Message: "at least one item is required"})
	case len(m.Items) > MaxMenuItems:
		errors = append(errors, FieldError{Field: "items", Message: fmt.Sprintf("a menu holds at most %d items", MaxMenuItems)})
	}
	for idx := range m.Items {
		errors = append(errors, m.Items[idx].Validate(fmt.Sprintf("items[%d].", idx))...)
	}

	// Empty styling fields fall back to the builder defaults when rendered.
	if m.Font != "" && !m.Font.IsValid() {
		errors = append(errors, FieldError{Field: "font", Message: "font must be font-sans, font-serif, font-mono, or font-display"})
	}
	if m.FontColor != "" && !m.FontColor.IsValid() {
		errors = append(errors, FieldError{Field: "fontColor", Message: "fontColor is not a supported color"})
	}
	if m.Background != "" && (len(m.Background) > MaxBackgroundLength || !utf8.ValidString(string(m.Background)) || !m.Background.IsValid()) {
		errors = append(errors, FieldError{Field: "background", Message: "background must be a style token or an image URL"})
	}

	return errors
}

// Publication is a menu turned into a share link
type Publication struct {
	URL     string `json:"url"`
	Payload string `json:"payload"`
}

// CreateMenuResponse is returned after a menu is persisted
type CreateMenuResponse struct {
	ID string `json:"id"`
}
