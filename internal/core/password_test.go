package core

import "testing"

func TestCheckPassword(t *testing.T) {
	cases := []struct {
		in      string
		valid   bool
		message string
	}{
		{"abc", false, "Password must be at least 8 characters long."},
		{"abcdefgh", false, "Password must include an uppercase letter."},
		{"Abcdefgh", false, "Password must include a number."},
		{"Abcdefg1", true, ""},
		{"PASSWORD1", true, ""},
		{"", false, "Password must be at least 8 characters long."},
	}
	for _, tc := range cases {
		p := CheckPassword(tc.in)
		if p.Valid() != tc.valid {
			t.Fatalf("CheckPassword(%q).Valid() = %v, want %v", tc.in, p.Valid(), tc.valid)
		}
		if got := p.Message(); got != tc.message {
			t.Fatalf("CheckPassword(%q).Message() = %q, want %q", tc.in, got, tc.message)
		}
	}
}
