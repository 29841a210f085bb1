package textutil

import "testing"

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"clip.mp4", "clip.mp4"},
		{"  a/b\\c:d  ", "a-b-c-d"},
		{"what?<>|\"", "what"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SanitizeFileName(tc.in); got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"My Holiday Clip", "my_holiday_clip"},
		{"GOPR0042", "gopr0042"},
		{"__--__", "unknown"},
		{"", "unknown"},
		{"vid-01_final", "vid-01_final"},
	}
	for _, tc := range cases {
		if got := SanitizeToken(tc.in); got != tc.want {
			t.Fatalf("SanitizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
