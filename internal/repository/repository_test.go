package repository

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestList_ExcludesDotfilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	writeFile(t, filepath.Join(dir, "b.png"), []byte("b"))
	writeFile(t, filepath.Join(dir, "a.png"), []byte("a"))
	writeFile(t, filepath.Join(dir, ".DS_Store"), []byte("x"))
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := repo.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "a.png" || names[1] != "b.png" {
		t.Fatalf("List = %v, want [a.png b.png]", names)
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ImageSaved")
	repo, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if info, err := os.Stat(repo.Dir()); err != nil || !info.IsDir() {
		t.Fatalf("repository dir not created: %v", err)
	}
}

func TestImport(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "repo"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	src := filepath.Join(t.TempDir(), "cat.png")
	writeFile(t, src, []byte("meow"))

	name, err := repo.Import(src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if name != "cat.png" {
		t.Fatalf("Import name = %q, want cat.png", name)
	}
	data, err := repo.Read("cat.png")
	if err != nil || !bytes.Equal(data, []byte("meow")) {
		t.Fatalf("Read = %q, %v", data, err)
	}

	other := filepath.Join(t.TempDir(), "cat.png")
	writeFile(t, other, []byte("woof"))
	if _, err := repo.Import(other); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate Import error = %v, want ErrExists", err)
	}
	data, _ = repo.Read("cat.png")
	if !bytes.Equal(data, []byte("meow")) {
		t.Fatalf("duplicate import overwrote file: %q", data)
	}
}

func TestImport_MissingSource(t *testing.T) {
	repo, _ := Open(t.TempDir())
	if _, err := repo.Import(filepath.Join(t.TempDir(), "nope.png")); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestImport_RejectsHiddenNames(t *testing.T) {
	repo, _ := Open(t.TempDir())
	src := filepath.Join(t.TempDir(), ".cat.png")
	writeFile(t, src, []byte("meow"))

	if _, err := repo.Import(src); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("Import(.cat.png) error = %v, want ErrInvalidName", err)
	}
	if _, err := os.Stat(filepath.Join(repo.Dir(), ".cat.png")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("hidden file was copied: %v", err)
	}
}

func TestImport_LongName(t *testing.T) {
	repo, _ := Open(t.TempDir())
	name := strings.Repeat("a", 246) + ".png"
	src := filepath.Join(t.TempDir(), name)
	writeFile(t, src, []byte("meow"))

	got, err := repo.Import(src)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got != name {
		t.Fatalf("Import name = %q, want %q", got, name)
	}
	entries, err := os.ReadDir(repo.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("repository holds %d entries, want only the imported file", len(entries))
	}
}

func TestRemove_Idempotent(t *testing.T) {
	dir := t.TempDir()
	repo, _ := Open(dir)
	writeFile(t, filepath.Join(dir, "x.png"), []byte("x"))

	if err := repo.Remove("x.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if repo.Exists("x.png") {
		t.Fatal("file still exists after Remove")
	}
	if err := repo.Remove("x.png"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestPath_RejectsTraversal(t *testing.T) {
	repo, _ := Open(t.TempDir())
	tests := []string{"", ".", "..", "../etc/passwd", "a/b.png", `a\b.png`}
	for _, name := range tests {
		if _, err := repo.Path(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Path(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
	if _, err := repo.Path("ok.png"); err != nil {
		t.Errorf("Path(ok.png) unexpected error: %v", err)
	}
}

func TestWatch_ReportsAddAndRemove(t *testing.T) {
	dir := t.TempDir()
	repo, _ := Open(dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx, nil)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	writeFile(t, filepath.Join(dir, ".hidden"), []byte("h"))
	writeFile(t, filepath.Join(dir, "new.png"), []byte("n"))

	waitFor := func(op Op) {
		t.Helper()
		deadline := time.After(3 * time.Second)
		for {
			select {
			case ev := <-events:
				if ev.Name == ".hidden" {
					t.Fatalf("hidden file reported: %+v", ev)
				}
				if ev.Name == "new.png" && ev.Op == op {
					return
				}
			case <-deadline:
				t.Fatalf("timed out waiting for %s", op)
			}
		}
	}

	waitFor(OpAdded)
	if err := os.Remove(filepath.Join(dir, "new.png")); err != nil {
		t.Fatal(err)
	}
	waitFor(OpRemoved)
}

func TestHidden(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".DS_Store", true},
		{".gitkeep", true},
		{"cat.png", false},
		{"cat.v2.png", false},
	}
	for _, tt := range tests {
		if got := Hidden(tt.name); got != tt.want {
			t.Errorf("Hidden(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
