package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/forgo/qrmenu/api/internal/database"
	"github.com/forgo/qrmenu/api/internal/model"
)

// MenuRepository handles menu data access on SurrealDB
type MenuRepository struct {
	db database.Database
}

// NewMenuRepository creates a new menu repository
func NewMenuRepository(db database.Database) *MenuRepository {
	return &MenuRepository{db: db}
}

// Save creates a menu record under a new uuid key and returns the key.
// CREATE fails rather than overwrite when the key is taken.
func (r *MenuRepository) Save(ctx context.Context, menu *model.Menu) (string, error) {
	id := uuid.NewString()

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

	vars := map[string]interface{}{
		"id":          id,
		"title":       menu.Title,
		"description": menu.Description,
		"items":       itemsRecord(menu.Items),
		"font":        string(menu.Font),
		"font_color":  string(menu.FontColor),
		"background":  string(menu.Background),
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isAlreadyExistsError(err) {
			return "", fmt.Errorf("%w: menu %s", database.ErrDuplicate, id)
		}
		return "", err
	}

	return id, nil
}

// Fetch retrieves a menu by its uuid key.
// Keys that are not uuids cannot exist and report ErrNotFound without a query.
func (r *MenuRepository) Fetch(ctx context.Context, id string) (*model.Menu, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, database.ErrNotFound
	}

	// Direct record access - more efficient than WHERE id =
	query := `SELECT * FROM type::thing('menu', $id)`
	vars := map[string]interface{}{"id": key.String()}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}

	return menuFromRecord(result)
}
