package builder

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/forgo/qrmenu/api/internal/catalog"
	"github.com/forgo/qrmenu/api/internal/codec"
	"github.com/forgo/qrmenu/api/internal/model"
)

// Builder defaults
const (
	DefaultTitle       = "Your Cosmic Menu"
	DefaultDescription = "Explore our stellar dishes!"
)

// Operator-facing messages
const (
	MsgInvalidItem  = "Please enter a valid dish name and price."
	MsgInvalidDiet  = "Please choose vegetarian, vegan, or spicy, or leave the dietary tag empty."
	MsgIncomplete   = "Please add a title, description, and at least one dish before generating the QR code."
	MsgTooLarge     = "Menu data too large for QR code. Reduce the number of items or shorten descriptions."
	MsgEncodeFailed = "Failed to encode menu data."
)

// Draft is the dish being typed, kept as text until it is added
type Draft struct {
	Name    string `json:"name"`
	Desc    string `json:"desc"`
	Price   string `json:"price"`
	Dietary string `json:"dietary"`
}

// State is everything the builder shows
type State struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Items       []model.MenuItem `json:"items"`
	Font        model.Font       `json:"font"`
	FontColor   model.FontColor  `json:"fontColor"`
	Background  model.Background `json:"background"`
	Draft       Draft            `json:"draft"`
	Error       string           `json:"error,omitempty"`
}

// NewState returns the builder's starting state
func NewState() State {
	return State{
		Title:       DefaultTitle,
		Description: DefaultDescription,
		Items:       []model.MenuItem{},
		Font:        model.FontSans,
		FontColor:   model.ColorWhite,
		Background:  model.DefaultBackground,
	}
}

// Menu returns the menu the state currently describes
func (s State) Menu() *model.Menu {
	return &model.Menu{
		Title:       s.Title,
		Description: s.Description,
		Items:       append([]model.MenuItem{}, s.Items...),
		Font:        s.Font,
		FontColor:   s.FontColor,
		Background:  s.Background,
	}
}

// ActionType names a builder action
type ActionType string

const (
	ActionSetField       ActionType = "set_field"
	ActionSetDraft       ActionType = "set_draft"
	ActionAddItem        ActionType = "add_item"
	ActionChooseTemplate ActionType = "choose_template"
	ActionReset          ActionType = "reset"
	ActionSave           ActionType = "save"
)

// Action is one edit sent by the builder client
type Action struct {
	Type  ActionType `json:"type"`
	Field string     `json:"field,omitempty"`
	Value string     `json:"value,omitempty"`
	Item  *Draft     `json:"item,omitempty"`
	Name  string     `json:"name,omitempty"`
}

// Templates resolves background templates by name
type Templates interface {
	Template(name string) (catalog.Template, bool)
}

// Starter is implemented by catalogs that choose the starting background
type Starter interface {
	Background() model.Background
}

// StartState is NewState with the starting background taken from templates
// when it implements Starter.
func StartState(templates Templates) State {
	s := NewState()
	if st, ok := templates.(Starter); ok {
		if bg := st.Background(); bg != "" {
			s.Background = bg
		}
	}
	return s
}

// Apply returns the state that results from the action. The input state is not modified.
// templates may be nil, in which case choose_template always fails.
func Apply(s State, a Action, templates Templates) State {
	switch a.Type {
	case ActionSetField:
		return setField(s, a.Field, a.Value)
	case ActionSetDraft:
		return setDraft(s, a.Field, a.Value)
	case ActionAddItem:
		return addItem(s, a.Item)
	case ActionChooseTemplate:
		return chooseTemplate(s, a.Name, templates)
	case ActionReset:
		return StartState(templates)
	default:
		s.Error = fmt.Sprintf("Unknown action %q.", a.Type)
		return s
	}
}

func setField(s State, field, value string) State {
	switch field {
	case "title":
		s.Title = value
	case "description":
		s.Description = value
	case "font":
		s.Font = model.Font(value)
	case "fontColor":
		s.FontColor = model.FontColor(value)
	case "background":
		s.Background = model.Background(value)
	default:
		s.Error = fmt.Sprintf("Unknown field %q.", field)
	}
	return s
}

func setDraft(s State, field, value string) State {
	switch field {
	case "name":
		s.Draft.Name = value
	case "desc":
		s.Draft.Desc = value
	case "price":
		s.Draft.Price = value
	case "dietary":
		s.Draft.Dietary = value
	default:
		s.Error = fmt.Sprintf("Unknown draft field %q.", field)
	}
	return s
}

func addItem(s State, explicit *Draft) State {
	d := s.Draft
	if explicit != nil {
		d = *explicit
	}

	name := strings.TrimSpace(d.Name)
	price, ok := parsePrice(d.Price)
	if name == "" || !ok {
		s.Error = MsgInvalidItem
		return s
	}

	item := model.MenuItem{
		Name:        name,
		Description: strings.TrimSpace(d.Desc),
		Price:       price,
		Dietary:     model.DietaryTag(strings.TrimSpace(d.Dietary)),
	}
	if !item.Dietary.IsValid() {
		s.Error = MsgInvalidDiet
		return s
	}
	if errs := item.Validate(""); len(errs) > 0 {
		s.Error = fmt.Sprintf("Please check the dish: %s.", errs[0].Message)
		return s
	}

	s.Items = append(append(make([]model.MenuItem, 0, len(s.Items)+1), s.Items...), item)
	s.Draft = Draft{}
	s.Error = ""
	return s
}

func parsePrice(text string) (float64, bool) {
	price, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, false
	}
	return price, true
}

func chooseTemplate(s State, name string, templates Templates) State {
	if templates == nil {
		s.Error = fmt.Sprintf("Unknown template %q.", name)
		return s
	}
	t, ok := templates.Template(name)
	if !ok {
		s.Error = fmt.Sprintf("Unknown template %q.", name)
		return s
	}
	s.Background = t.Background
	s.Error = ""
	return s
}

// ErrIncomplete is returned by Publish when the title, description, or items are missing
var ErrIncomplete = errors.New("menu needs a title, a description, and at least one item")

// InvalidError reports the first rule a complete menu still breaks
type InvalidError struct {
	Field  string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid menu: %s: %s", e.Field, e.Reason)
}

// Publish builds the share link for the state. The same state always yields the same link.
func Publish(s State, c *codec.Codec) (model.Publication, error) {
	m := s.Menu()
	if strings.TrimSpace(m.Title) == "" || strings.TrimSpace(m.Description) == "" || len(m.Items) == 0 {
		return model.Publication{}, ErrIncomplete
	}
	if errs := m.Validate(); len(errs) > 0 {
		return model.Publication{}, &InvalidError{Field: errs[0].Field, Reason: errs[0].Message}
	}

	link, payload, err := c.Link(m)
	if err != nil {
		return model.Publication{}, err
	}
	return model.Publication{URL: link, Payload: payload}, nil
}

// Message turns a Publish error into the text shown to the operator
func Message(err error) string {
	var invalid *InvalidError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrIncomplete):
		return MsgIncomplete
	case errors.Is(err, codec.ErrPayloadTooLarge):
		return MsgTooLarge
	case errors.As(err, &invalid):
		return fmt.Sprintf("Please fix the menu before generating the QR code: %s.", invalid.Reason)
	default:
		return MsgEncodeFailed
	}
}
