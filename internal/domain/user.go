package domain

import (
	"strings"
	"time"
)

// User is a registered bot user. ID is the chat transport's stable user id.
type User struct {
	ID           int64
	Name         string
	Phone        string
	RegisteredAt time.Time
}

const (
	minPhoneDigits = 10
	// MaxPhoneLen is the stored length limit, plus sign included.
	MaxPhoneLen = 15
)

// NormalizePhone checks the basic shape of a phone number and returns its
// compact form: an optional leading '+' followed by digits only. Spaces,
// dashes and parentheses are accepted as separators and dropped.
func NormalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	var b strings.Builder
	digits := 0
	for i, r := range raw {
		switch {
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", false
		}
	}

	phone := b.String()
	if digits < minPhoneDigits || len(phone) > MaxPhoneLen {
		return "", false
	}
	return phone, true
}
