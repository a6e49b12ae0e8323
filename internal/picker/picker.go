// Package picker opens the desktop's native file chooser.
package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCancelled is returned when the user closes the dialog without choosing
// a file.
var ErrCancelled = errors.New("file selection cancelled")

// Picker asks the user for one file.
type Picker interface {
	Pick(ctx context.Context, title string, extensions []string) (string, error)
}

// Func adapts a plain function to Picker.
type Func func(ctx context.Context, title string, extensions []string) (string, error)

// Pick calls f.
func (f Func) Pick(ctx context.Context, title string, extensions []string) (string, error) {
	return f(ctx, title, extensions)
}

type dialogKind int

const (
	kindZenity dialogKind = iota
	kindKdialog
	kindYad
)

var backends = []struct {
	name string
	kind dialogKind
}{
	{"zenity", kindZenity},
	{"kdialog", kindKdialog},
	{"yad", kindYad},
}

// Detect returns the first dialog program found in PATH, in priority order:
// zenity, kdialog, yad.
func Detect() (string, error) {
	for _, b := range backends {
		if _, err := exec.LookPath(b.name); err == nil {
			return b.name, nil
		}
	}
	return "", fmt.Errorf("no file dialog found in PATH (looked for: zenity, kdialog, yad)")
}

// New returns a picker by name. Supported names: auto, zenity, kdialog, yad.
func New(name string) (Picker, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	for _, b := range backends {
		if b.name != name {
			continue
		}
		if _, err := exec.LookPath(b.name); err != nil {
			return nil, fmt.Errorf("file dialog %q not found in PATH", b.name)
		}
		return &dialog{command: b.name, kind: b.kind}, nil
	}
	return nil, fmt.Errorf("unknown file dialog: %q (expected: auto, zenity, kdialog, yad)", name)
}

type dialog struct {
	command string
	kind    dialogKind
}

func (d *dialog) Pick(ctx context.Context, title string, extensions []string) (string, error) {
	cmd := exec.CommandContext(ctx, d.command, d.buildArgs(title, extensions)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if selection == "" && isCancelExit(err) {
			return "", ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s failed: %s", d.command, msg)
		}
		return "", fmt.Errorf("%s failed: %w", d.command, err)
	}
	if selection == "" {
		return "", ErrCancelled
	}
	// Only the first line counts if the dialog ignored single selection.
	if i := strings.IndexByte(selection, '\n'); i >= 0 {
		selection = selection[:i]
	}
	return selection, nil
}

func (d *dialog) buildArgs(title string, extensions []string) []string {
	globs := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		globs = append(globs, "*."+strings.TrimPrefix(ext, "."))
	}
	pattern := strings.Join(globs, " ")

	switch d.kind {
	case kindKdialog:
		args := []string{"--getopenfilename", "."}
		if pattern != "" {
			args = append(args, fmt.Sprintf("Images (%s)", pattern))
		}
		if title != "" {
			args = append(args, "--title", title)
		}
		return args
	case kindYad:
		args := []string{"--file"}
		if title != "" {
			args = append(args, "--title="+title)
		}
		if pattern != "" {
			args = append(args, "--file-filter=Images | "+pattern)
		}
		return args
	default:
		args := []string{"--file-selection"}
		if title != "" {
			args = append(args, "--title="+title)
		}
		if pattern != "" {
			args = append(args, "--file-filter=Images | "+pattern)
		}
		return args
	}
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	// zenity, kdialog and yad exit with 1 when the dialog is dismissed.
	switch exitErr.ExitCode() {
	case 1, 252:
		return true
	default:
		return false
	}
}
