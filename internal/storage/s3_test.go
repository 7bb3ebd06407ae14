package storage

import "testing"

func TestSafeJoinPath(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		key     string
		want    string
		wantErr bool
	}{
		{"simple", "exports", "u1/20240101T000000Z.json", "exports/u1/20240101T000000Z.json", false},
		{"leading slash", "/exports/", "/u1/a.json", "exports/u1/a.json", false},
		{"collapses double slashes", "exports", "u1//a.json", "exports/u1/a.json", false},
		{"no prefix", "", "a.json", "a.json", false},
		{"empty key", "exports", "  ", "", true},
		{"traversal", "exports", "../secrets", "", true},
		{"backslash", "exports", "u1\\a.json", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeJoinPath(tt.prefix, tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SafeJoinPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SafeJoinPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewS3StorageRequiresConfig(t *testing.T) {
	if _, err := NewS3Storage(S3Config{Endpoint: "minio:9000"}); err == nil {
		t.Fatal("expected error for incomplete config")
	}
}
