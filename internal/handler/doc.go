// Package handler provides HTTP request handlers for the QR menu API.
//
// Each handler struct encapsulates the dependencies needed to serve one feature
// area and registers its own routes on a net/http ServeMux.
//
// # Handler Pattern
//
//   - Constructor function (NewXxxHandler) accepts the narrow interfaces it calls
//   - RegisterRoutes mounts the handler's Go 1.22 method patterns
//   - Response helpers from response.go standardize output format
//   - Errors are mapped to RFC 9457 Problem Details responses by MapServiceError
//
// # Routes
//
//	POST /api/menus        persist a menu, 201 {"id"}
//	GET  /api/menus/{id}   fetch a persisted menu (ETag, If-None-Match)
//	POST /api/publish      share link for a menu
//	POST /api/publish/qr   share link as a PNG download
//	GET  /api/styles       style catalog
//	GET  /menu?data=...    menu page from a share link
//	GET  /menu/{id}        menu page from the store
//	GET  /ws/builder       websocket builder session
//	GET  /health           liveness plus store ping
//
// # Example Usage
//
//	mux := http.NewServeMux()
//	handler.NewMenuHandler(menuService).RegisterRoutes(mux)
//	handler.NewPublishHandler(menuService).RegisterRoutes(mux)
package handler
