// Package fixtures provides test data factories for the QR menu API.
//
// # Building Menus
//
//	m := fixtures.Menu()                                 // valid two-item menu
//	m := fixtures.Menu(fixtures.WithTitle("Night Bar"))  // customized
//	m := fixtures.Menu(fixtures.WithManyItems(60))       // too large to share
//
// # Persisting Menus
//
//	f := fixtures.New(tdb.DB)
//	stored := f.CreateMenu(t)
//
// Stored data is removed with the test database namespace.
package fixtures
