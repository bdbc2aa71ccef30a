// Package service implements the business logic layer for the QR menu API.
//
// MenuService sits between the HTTP handlers and the menu store. It validates
// menus, persists and fetches them, and turns them into share links and QR
// codes.
//
// # Repository Interfaces
//
// The service defines the store contract it needs, so the SurrealDB and
// MongoDB repositories are interchangeable and tests can use func-field mocks:
//
//	type MenuRepository interface {
//	    Save(ctx context.Context, menu *model.Menu) (string, error)
//	    Fetch(ctx context.Context, id string) (*model.Menu, error)
//	}
//
// # Error Handling
//
// Methods return the sentinel errors in errors.go, wrapped when there is
// context worth keeping. Invalid menus come back as *ValidationError, which
// matches ErrInvalidMenu and lists every broken field rule.
//
// # Example Usage
//
//	svc := NewMenuService(MenuServiceConfig{
//	    Repo:  menuRepository,
//	    Store: db,
//	    Codec: codec.New(cfg.Publish.PublicOrigin, cfg.Publish.MaxURLLength),
//	})
//	menu, err := svc.Create(ctx, &model.Menu{Title: "Cafe"})
package service
