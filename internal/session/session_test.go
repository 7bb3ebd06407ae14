package session

import (
	"errors"
	"testing"
)

func TestRequire(t *testing.T) {
	if err := (Session{}).Require(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("anonymous Require() = %v, want ErrNoSession", err)
	}
	if err := (Session{UserID: "u1"}).Require(); err != nil {
		t.Fatalf("Require() = %v, want nil", err)
	}
	if (Session{DeviceID: "d1"}).Authenticated() {
		t.Fatal("a device id alone is not an authenticated session")
	}
}
