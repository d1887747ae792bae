// Package room manages the physical spaces devices live in.
//
// Deleting a room cascades to its devices inside a single transaction:
// either the room and all its devices disappear together or nothing
// changes. Room names are globally unique; device names are unique only
// within their room (enforced in the device package).
package room
