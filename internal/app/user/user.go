/*
Package user defines the identity of a chat participant as it is passed between the
directory, the presence registry and clients.
*/
package user

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// User represents the public identity of an account. Credentials never leave the directory.
type User struct {
	// ID is the opaque, stable identifier assigned by the directory.
	ID string `json:"id"`

	// Username is the unique login name.
	Username string `json:"username"`

	// Avatar is derived from Username and never stored.
	Avatar string `json:"avatar"`
}

// New builds a User with its derived avatar.
func New(id, username string) User {
	return User{ID: id, Username: username, Avatar: AvatarFor(username)}
}

// AvatarFor returns the first character of username, upper-cased, or "U" when the name is blank.
func AvatarFor(username string) string {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return "U"
	}

	r, _ := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(r))
}
