package identity

import "testing"

func TestHash_DeterministicAndDistinct(t *testing.T) {
	a := Hash("cat.png")
	if a != Hash("cat.png") {
		t.Fatalf("Hash is not deterministic")
	}
	if a == Hash("dog.png") {
		t.Fatalf("distinct names produced the same id %q", a)
	}
	if len(a) != Size {
		t.Fatalf("len(Hash) = %d, want %d", len(a), Size)
	}
	if want := "b94f5ce0690dbe021dcf4110f2c756483eee412ce056843451eb3b19c15547ad"; a != want {
		t.Fatalf("Hash(cat.png) = %q, want %q", a, want)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{Hash("x"), true},
		{"", false},
		{"abc", false},
		{"ZZ" + Hash("x")[2:], false},
		{"AB" + Hash("x")[2:], false},
		{Hash("x") + "0", false},
	}
	for _, tt := range tests {
		if got := Valid(tt.id); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.png", "image/png"},
		{"a.JPG", "image/jpeg"},
		{"dir/a.jpeg", "image/jpeg"},
		{"a.webp", "image/webp"},
		{"a.svg", "image/svg+xml"},
		{"a.ico", "image/x-icon"},
		{"noext", DefaultMimeType},
		{"a.unknown", DefaultMimeType},
	}
	for _, tt := range tests {
		if got := MimeType(tt.path); got != tt.want {
			t.Errorf("MimeType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
