// Package fixtures provides menu test data for unit and integration tests.
//
// Menu builds an in-memory menu with sensible defaults; Factory persists
// menus straight into a test database.
//
// Usage:
//
//	m := fixtures.Menu(fixtures.WithTitle("Cafe"))
//
//	f := fixtures.New(tdb.DB)
//	stored := f.CreateMenu(t)
package fixtures

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/qrmenu/api/internal/database"
	"github.com/forgo/qrmenu/api/internal/model"
)

// MenuOpt customizes a fixture menu
type MenuOpt func(*model.Menu)

// Menu returns a valid, publishable menu
func Menu(opts ...MenuOpt) *model.Menu {
	m := &model.Menu{
		Title:       "Cafe",
		Description: "Fresh daily",
		Items: []model.MenuItem{
			{Name: "Coffee", Description: "", Price: 2.50},
			{Name: "Masala Dosa", Description: "Crisp rice crepe", Price: 120, Dietary: model.DietaryVegetarian},
		},
		Font:       model.FontSans,
		FontColor:  model.ColorWhite,
		Background: model.DefaultBackground,
	}
	for _, fn := range opts {
		fn(m)
	}
	return m
}

// WithTitle sets the menu title
func WithTitle(title string) MenuOpt {
	return func(m *model.Menu) { m.Title = title }
}

// WithDescription sets the menu description
func WithDescription(desc string) MenuOpt {
	return func(m *model.Menu) { m.Description = desc }
}

// WithItems replaces the item list
func WithItems(items ...model.MenuItem) MenuOpt {
	return func(m *model.Menu) { m.Items = items }
}

// WithBackground sets the background
func WithBackground(bg model.Background) MenuOpt {
	return func(m *model.Menu) { m.Background = bg }
}

// WithManyItems appends n described dishes, enough to push a share link past its ceiling
func WithManyItems(n int) MenuOpt {
	return func(m *model.Menu) {
		for i := 0; i < n; i++ {
			m.Items = append(m.Items, model.MenuItem{
				Name:        fmt.Sprintf("Dish %d", i+1),
				Description: "Slow cooked with seasonal vegetables",
				Price:       float64(100 + i),
			})
		}
	}
}

// Factory creates menus in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

// ctx returns a context with timeout
func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// CreateMenu stores a fixture menu and returns it with its id
func (f *Factory) CreateMenu(t *testing.T, opts ...MenuOpt) *model.Menu {
	t.Helper()

	m := Menu(opts...)
	id := uuid.NewString()

	items := make([]map[string]interface{}, 0, len(m.Items))
	for _, item := range m.Items {
		rec := map[string]interface{}{"name": item.Name, "desc": item.Description, "price": item.Price}
		if item.Dietary != model.DietaryNone {
			rec["dietary"] = string(item.Dietary)
		}
		items = append(items, rec)
	}

	query := `
		CREATE type::thing('menu', $id) CONTENT {
			title: $title,
			description: $description,
			items: $items,
			font: $font,
			fontColor: $font_color,
			background: $background,
			created_on: time::now()
		}
	`
	err := f.db.Execute(ctx(t), query, map[string]interface{}{
		"id":          id,
		"title":       m.Title,
		"description": m.Description,
		"items":       items,
		"font":        string(m.Font),
		"font_color":  string(m.FontColor),
		"background":  string(m.Background),
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create menu: %v", err)
	}

	m.ID = id
	return m
}
