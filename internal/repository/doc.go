// Package repository implements the menu document store.
//
// Two repositories satisfy the same Save/Fetch contract:
//
//   - MenuRepository stores menus in SurrealDB as menu:<uuid> records
//   - MongoMenuRepository stores menus in the MongoDB "menus" collection
//     under an ObjectID
//
// Both write a menu with a single statement and never overwrite an existing
// record. Fetch returns database.ErrNotFound for an unmatched identifier,
// including identifiers that cannot exist for that backend; storage failures
// surface as database.ErrConnection or database.ErrQuery.
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax for security
//   - type::thing() for safe record ids
//   - time::now() for automatic timestamps
//
// # Example Usage
//
//	repo := NewMenuRepository(db)
//	menu, err := repo.Fetch(ctx, id)
//	if err != nil {
//	    if errors.Is(err, database.ErrNotFound) {
//	        // Handle not found
//	    }
//	    return err
//	}
package repository
