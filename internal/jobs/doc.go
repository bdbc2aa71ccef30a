// Package jobs implements background work for the QR menu API.
//
// Jobs run independently of HTTP request handling. Each job owns a ticker
// loop with idempotent Start and Stop, and exposes RunOnce for tests and
// manual triggers.
//
// # Jobs
//
//   - StoreProbe: pings the menu store and publishes qrmenu_store_up
//
// # Error Handling
//
// Jobs log failures and keep running. They never crash the server.
package jobs
