// Package model defines the menu document and API error types for the QR menu API.
//
// The model package contains the struct definitions shared by every layer: the
// menu and its items, the styling enumerations, response bodies, and RFC 9457
// error definitions.
//
// # Domain Entities
//
//   - Menu: title, description, ordered items, and styling for one published menu
//   - MenuItem: a single dish with name, description, price, and dietary tag
//   - Font, FontColor, DietaryTag: closed enumerations rendered as style tokens
//   - Background: a style token or an image reference (https, blob, data:image)
//
// # JSON Serialization
//
// Field names follow the share link format, so an encoded menu reads:
//
//	{"title":"Cafe","description":"Fresh","items":[{"name":"Tea","desc":"Hot","price":2}],
//	 "font":"font-sans","fontColor":"text-white","background":"bg-black"}
//
// # Validation Constants
//
//	const (
//	    MaxMenuTitleLength = 120
//	    MaxMenuItems       = 200
//	)
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go. Every problem also
// carries an "error" member holding the detail text.
package model
