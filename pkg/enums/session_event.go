package enums

import "fmt"

// SessionEventKind names the auth transitions broadcast to cart and wishlist.
type SessionEventKind string

const (
	SessionEventLoggedIn  SessionEventKind = "session.logged_in"
	SessionEventLoggedOut SessionEventKind = "session.logged_out"
)

var validSessionEventKinds = []SessionEventKind{
	SessionEventLoggedIn,
	SessionEventLoggedOut,
}

func (k SessionEventKind) String() string {
	return string(k)
}

func (k SessionEventKind) IsValid() bool {
	for _, candidate := range validSessionEventKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

func ParseSessionEventKind(value string) (SessionEventKind, error) {
	for _, candidate := range validSessionEventKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session event kind %q", value)
}
