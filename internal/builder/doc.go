// Package builder holds the menu builder's editing state.
//
// A State is a plain value. Apply folds one Action into it and returns the
// next State; nothing is kept in package globals. Publish turns a State into
// a share link through the payload codec.
//
// # Actions
//
//	set_field        {field, value}  title, description, font, fontColor, background
//	set_draft        {field, value}  name, desc, price, dietary of the dish being typed
//	add_item         {item?}         appends the draft (or item) after checking it
//	choose_template  {name}          copies a catalog template's background
//	reset            {}              back to the starting state
//	save             {}              session only, persists the menu
//
// A Session serves one websocket connection. It owns a State, applies the
// client's actions in order, and answers each one with the new State and the
// publish preview.
package builder
