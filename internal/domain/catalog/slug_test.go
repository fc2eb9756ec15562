package catalog

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Men's Shoes", "men-s-shoes"},
		{"  Home & Garden  ", "home-garden"},
		{"T-Shirts", "t-shirts"},
		{"Size 42", "size-42"},
		{"---", ""},
		{"Été", "t"},
	}

	for _, tc := range tests {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
