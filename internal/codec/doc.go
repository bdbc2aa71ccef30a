// Package codec converts a menu to and from the transport string embedded in a
// share link.
//
// A transport string is the menu's canonical JSON encoded with unpadded
// base64url, so it can sit in a query string without escaping:
//
//	payload, err := codec.Encode(menu)
//	menu, err := codec.Decode(r.URL.Query().Get("data"))
//
// Decode also accepts standard base64 links, including the damage query
// parsing does to them ('+' read back as a space). Every decode failure
// matches ErrNoData; the wrapped cause tells absent, malformed, and invalid
// payloads apart for logging.
package codec
