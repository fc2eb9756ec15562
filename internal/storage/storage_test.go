package storage

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"front.jpg", "front.jpg"},
		{"my photo (1).png", "my_photo__1_.png"},
		{"../../etc/passwd", ".._.._etc_passwd"},
		{"", "file"},
	}

	for _, tc := range tests {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKeyFromURL(t *testing.T) {
	s := &Store{publicURL: "https://cdn.example.com/store"}

	if got := s.KeyFromURL("https://cdn.example.com/store/products/1-a.jpg"); got != "products/1-a.jpg" {
		t.Fatalf("got %q", got)
	}
	if got := s.KeyFromURL("https://elsewhere.example.com/x.jpg"); got != "" {
		t.Fatalf("foreign url should map to empty key, got %q", got)
	}
}
