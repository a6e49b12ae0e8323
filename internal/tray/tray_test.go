package tray

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestIcon_IsValidPNG(t *testing.T) {
	data := Icon()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("icon size = %v", b)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Fatalf("icon corner is not transparent")
	}
}

func TestHandle(t *testing.T) {
	var (
		settings int
		quits    int
		opened   []string
	)
	tr := New(Options{
		GithubURL:  "https://example.com/animg",
		OnSettings: func() { settings++ },
		OnQuit:     func() { quits++ },
		OpenURL: func(url string) error {
			opened = append(opened, url)
			return nil
		},
	})

	if tr.handle(actionSettings) {
		t.Fatal("settings must not exit the tray")
	}
	if tr.handle(actionGithub) {
		t.Fatal("github must not exit the tray")
	}
	if !tr.handle(actionQuit) {
		t.Fatal("close app must exit the tray")
	}

	if settings != 1 || quits != 1 {
		t.Fatalf("settings=%d quits=%d", settings, quits)
	}
	if len(opened) != 1 || opened[0] != "https://example.com/animg" {
		t.Fatalf("opened = %v", opened)
	}
}

func TestHandle_GithubErrorsAreLogged(t *testing.T) {
	tr := New(Options{
		GithubURL: "https://example.com/animg",
		OpenURL:   func(string) error { return errors.New("no browser") },
	})
	if tr.handle(actionGithub) {
		t.Fatal("failed open must not exit the tray")
	}
}

func TestHandle_EmptyGithubURL(t *testing.T) {
	called := false
	tr := New(Options{OpenURL: func(string) error { called = true; return nil }})
	tr.handle(actionGithub)
	if called {
		t.Fatal("OpenURL called without a URL")
	}
}
