package i18n

import "testing"

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"de", "de"},
		{"de-DE", "de"},
		{"de_DE", "de"},
		{"de_DE.UTF-8", "de"},
		{"DE", "de"},
		{"uk-UA", "uk"},
		{"en_US", "en"},
		{" en ", "en"},
		{"12345", "12345"},
	}
	for _, tt := range tests {
		if got := NormalizeLocale(tt.in); got != tt.want {
			t.Errorf("NormalizeLocale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocaleName(t *testing.T) {
	if got := LocaleName("de_DE"); got != "German" {
		t.Errorf("LocaleName(de_DE) = %q, want German", got)
	}
	if got := LocaleName("xx"); got != "xx" {
		t.Errorf("LocaleName(xx) = %q, want xx", got)
	}
}
