// Package session carries the authenticated identity explicitly through
// handlers and services.
package session

import "errors"

var ErrNoSession = errors.New("no authenticated session")

// Session identifies the caller. The zero value is anonymous.
type Session struct {
	UserID   string
	Email    string
	DeviceID string
}

func (s Session) Authenticated() bool {
	return s.UserID != ""
}

// Require returns ErrNoSession for anonymous callers.
func (s Session) Require() error {
	if !s.Authenticated() {
		return ErrNoSession
	}
	return nil
}
