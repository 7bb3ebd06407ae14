package validation

import (
	"testing"

	"github.com/AnemiB/SipStop/internal/encouragement"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected bool
	}{
		{"Valid email", "user@example.com", true},
		{"Valid email with subdomain", "user@mail.example.com", true},
		{"Empty email", "", false},
		{"Email without @", "userexample.com", false},
		{"Email without domain", "user@", false},
		{"Email with spaces", "user @example.com", false},
		{"Valid email with numbers", "user123@example.com", true},
		{"Valid email with dots", "user.name@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateEmail(tt.email)
			if result != tt.expected {
				t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, result, tt.expected)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{"Email with uppercase", "User@EXAMPLE.COM", "user@example.com"},
		{"Email with spaces", "  user@example.com  ", "user@example.com"},
		{"Email with spaces and uppercase", "  USER@EXAMPLE.COM  ", "user@example.com"},
		{"Lowercase email", "user@example.com", "user@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeEmail(tt.email)
			if result != tt.expected {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.email, result, tt.expected)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected bool
	}{
		{"Valid username", "john_doe", true},
		{"Valid username with numbers", "user123", true},
		{"Valid username minimum length", "abc", true},
		{"Valid username maximum length", "a1234567890123456789012345678901", true},
		{"Username too short", "ab", false},
		{"Username too long", "a12345678901234567890123456789012", false},
		{"Username with spaces", "john doe", false},
		{"Username with special chars", "john-doe", false},
		{"Username with uppercase", "JohnDoe", true},
		{"Empty username", "", false},
		{"Username with only numbers", "12345", true},
		{"Username with only underscores", "____", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateUsername(tt.username)
			if result != tt.expected {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, result, tt.expected)
			}
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected string
	}{
		{"Username with spaces", "  john_doe  ", "john_doe"},
		{"Username no spaces", "john_doe", "john_doe"},
		{"Username with leading space", "  john_doe", "john_doe"},
		{"Username with trailing space", "john_doe  ", "john_doe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeUsername(tt.username)
			if result != tt.expected {
				t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.username, result, tt.expected)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"Valid password", "mysecurepassword123", true},
		{"Valid password minimum length", "12345678", true},
		{"Password too short", "short", false},
		{"Password with special chars", "p@ssw0rd!123", true},
		{"Password with spaces", "my secure password", true},
		{"Multibyte runes count once", "ééééééé", false},
		{"Empty password", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidatePassword(tt.password)
			if result != tt.expected {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, result, tt.expected)
			}
		})
	}
}

func TestNormalizeGoal(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		want   string
		wantOK bool
	}{
		{"Empty uses default", "", "3 months", true},
		{"Whitespace uses default", "   ", "3 months", true},
		{"One week", "1 week", "1 week", true},
		{"One year trimmed", " 1 year ", "1 year", true},
		{"Unknown label", "2 weeks", "", false},
		{"Wrong case", "1 Week", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeGoal(tt.label)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NormalizeGoal(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMoodForEmoji(t *testing.T) {
	tests := []struct {
		id     int
		want   encouragement.Mood
		wantOK bool
	}{
		{0, encouragement.MoodSad, true},
		{1, encouragement.MoodSad, true},
		{2, encouragement.MoodNormal, true},
		{3, encouragement.MoodNormal, true},
		{4, encouragement.MoodHappy, true},
		{5, encouragement.MoodHappy, true},
		{6, "", false},
		{-1, "", false},
	}

	for _, tt := range tests {
		got, ok := MoodForEmoji(tt.id)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("MoodForEmoji(%d) = (%q, %v), want (%q, %v)", tt.id, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestRequiredText(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		max    int
		want   string
		wantOK bool
	}{
		{"Trimmed", "  hello  ", 10, "hello", true},
		{"Blank", "   ", 10, "", false},
		{"Too long", "hello world", 5, "hello world", false},
		{"No limit", "hello world", 0, "hello world", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RequiredText(tt.in, tt.max)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("RequiredText(%q, %d) = (%q, %v), want (%q, %v)", tt.in, tt.max, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestValidateDeviceID(t *testing.T) {
	if !ValidateDeviceID("3f2b9c1e-device") {
		t.Error("expected uuid-like device id to be valid")
	}
	for _, bad := range []string{"", "short", "has space in it", "semi;colon;device"} {
		if ValidateDeviceID(bad) {
			t.Errorf("ValidateDeviceID(%q) = true, want false", bad)
		}
	}
}

func TestTrimAndLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"Normal string", "hello world", 20, "hello world"},
		{"String with spaces", "  hello world  ", 20, "hello world"},
		{"String exceeding limit", "hello world this is too long", 10, "hello worl"},
		{"Empty string", "", 20, ""},
		{"String at limit", "hello", 5, "hello"},
		{"Multibyte cut on rune boundary", "héllo", 2, "hé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TrimAndLimit(tt.input, tt.limit)
			if result != tt.expected {
				t.Errorf("TrimAndLimit(%q, %d) = %q, want %q", tt.input, tt.limit, result, tt.expected)
			}
		})
	}
}
