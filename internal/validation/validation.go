package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/AnemiB/SipStop/internal/encouragement"
	"github.com/AnemiB/SipStop/internal/models"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)
	deviceIDRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{8,128}$`)
)

// MinPasswordLength is the shortest accepted password, in runes.
const MinPasswordLength = 8

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidateUsername(username string) bool {
	username = NormalizeUsername(username)
	return usernameRe.MatchString(username)
}

func ValidatePassword(password string) bool {
	return utf8.RuneCountInString(password) >= MinPasswordLength
}

// NormalizeGoal returns the stored goal label for a drink. An empty label
// means the default goal; unknown labels are rejected.
func NormalizeGoal(label string) (string, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return models.DefaultMotivation, true
	}
	if _, ok := encouragement.GoalDays(label); !ok {
		return "", false
	}
	return label, true
}

// MoodForEmoji maps the note picker's emoji id to its mood:
// 0 and 1 are sad, 2 and 3 normal, 4 and 5 happy.
func MoodForEmoji(emojiID int) (encouragement.Mood, bool) {
	icon, ok := encouragement.IconByEmojiID(emojiID)
	if !ok {
		return "", false
	}
	return icon.Mood, true
}

// RequiredText trims s and reports whether it is non-empty and at most max runes.
func RequiredText(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return s, false
	}
	return s, true
}

func ValidateDeviceID(id string) bool {
	return deviceIDRe.MatchString(id)
}

// TrimAndLimit trims s and cuts it to max runes.
func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
