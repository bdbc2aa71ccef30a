package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/forgo/qrmenu/api/internal/model"
)

// isAlreadyExistsError checks if an error reports an existing record or unique key
func isAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "already exists") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "unique")
}

// recordKey extracts the key part of a SurrealDB record id
func recordKey(id interface{}) string {
	switch v := id.(type) {
	case string:
		if _, key, ok := strings.Cut(v, ":"); ok {
			return strings.Trim(key, "⟨⟩`")
		}
		return v
	case models.RecordID:
		return fmt.Sprintf("%v", v.ID)
	case *models.RecordID:
		if v != nil {
			return fmt.Sprintf("%v", v.ID)
		}
	case map[string]interface{}:
		// Handle {"tb": "menu", "id": "xxx"} format
		if key, ok := v["id"]; ok {
			return fmt.Sprintf("%v", key)
		}
	}
	return ""
}

// parseTime parses time from the formats SurrealDB returns
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// menuFromRecord maps a stored SurrealDB record onto a menu
func menuFromRecord(result interface{}) (*model.Menu, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected result format")
	}

	// Store-only fields are mapped by hand; the rest shares the menu JSON layout.
	content := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k == "id" || k == "created_on" {
			continue
		}
		content[k] = v
	}

	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	var menu model.Menu
	if err := json.Unmarshal(jsonBytes, &menu); err != nil {
		return nil, err
	}

	menu.ID = recordKey(data["id"])
	if created := parseTime(data["created_on"]); !created.IsZero() {
		created = created.UTC()
		menu.CreatedOn = &created
	}
	return &menu, nil
}

// itemsRecord converts menu items to the stored layout; an absent dietary tag is omitted
func itemsRecord(items []model.MenuItem) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		rec := map[string]interface{}{
			"name":  item.Name,
			"desc":  item.Description,
			"price": item.Price,
		}
		if item.Dietary != model.DietaryNone {
			rec["dietary"] = string(item.Dietary)
		}
		out = append(out, rec)
	}
	return out
}
