package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	execLookPath         = exec.LookPath
	execCommandOutput    = func(name string, args ...string) ([]byte, error) { return exec.Command(name, args...).Output() }
	evalSymlinks         = filepath.EvalSymlinks
	detectSystemTerminal = defaultDetectSystemTerminal
)

// TerminalCommand returns the argv that runs cmd inside a terminal emulator.
//
// Resolution order: settings_command, $TERMINAL, the desktop's default
// terminal, then the first known emulator found in PATH.
func (c *Config) TerminalCommand(cmd []string) ([]string, error) {
	if len(cmd) == 0 {
		return nil, fmt.Errorf("command is empty")
	}
	if c != nil {
		if tmpl := strings.TrimSpace(c.SettingsCommand); tmpl != "" {
			return expandTemplate(tmpl, cmd)
		}
	}

	candidates := []string{
		normalizeTerminalRef(os.Getenv("TERMINAL")),
		normalizeTerminalRef(detectSystemTerminal()),
	}
	candidates = append(candidates, fallbackTerminals...)

	for _, name := range candidates {
		if name == "" {
			continue
		}
		tmpl := terminalTemplate(name)
		argv, err := splitCommand(tmpl)
		if err != nil || len(argv) == 0 {
			continue
		}
		if _, err := execLookPath(argv[0]); err != nil {
			continue
		}
		return expandTemplate(tmpl, cmd)
	}
	return nil, fmt.Errorf("no terminal emulator found; set settings_command")
}

// terminalTemplate returns the run template for a terminal. Unknown
// terminals get the common "-e" convention.
func terminalTemplate(name string) string {
	name = canonicalTerminal(name)
	if tmpl, ok := builtinTerminalCommands[name]; ok {
		return tmpl
	}
	return name + " -e {cmd}"
}

func canonicalTerminal(name string) string {
	lower := strings.ToLower(name)
	switch lower {
	case "com.mitchellh.ghostty":
		return "ghostty"
	case "gnome-terminal-server":
		return "gnome-terminal"
	case "uxterm":
		return "xterm"
	case "com.gexperts.tilix":
		return "tilix"
	}
	if _, ok := builtinTerminalCommands[lower]; ok {
		return lower
	}
	return name
}

// expandTemplate substitutes cmd into a command template. A bare {cmd}
// argument expands to cmd's arguments; an embedded {cmd} receives the
// shell-quoted command line. Templates without {cmd} get cmd appended.
func expandTemplate(tmpl string, cmd []string) ([]string, error) {
	argv, err := splitCommand(tmpl)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command template is empty")
	}

	out := make([]string, 0, len(argv)+len(cmd))
	substituted := false
	for _, arg := range argv {
		switch {
		case arg == "{cmd}":
			out = append(out, cmd...)
			substituted = true
		case strings.Contains(arg, "{cmd}"):
			out = append(out, strings.ReplaceAll(arg, "{cmd}", shellJoin(cmd)))
			substituted = true
		default:
			out = append(out, arg)
		}
	}
	if !substituted {
		out = append(out, cmd...)
	}
	return out, nil
}

func shellJoin(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\n'\"\\$`;&|<>()*?[]{}~#") {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}

func normalizeTerminalRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	ref = strings.Trim(ref, "\"'")
	if fields := strings.Fields(ref); len(fields) > 0 {
		ref = fields[0]
	}
	ref = strings.Trim(ref, "\"'")

	if strings.Contains(ref, "/") {
		ref = filepath.Base(ref)
	}
	ref = strings.TrimSpace(ref)
	ref = strings.TrimSuffix(ref, ".desktop")

	if ref == "x-terminal-emulator" {
		if resolved := resolveXTerminalEmulator(); resolved != "" {
			ref = resolved
		}
	}
	if strings.HasSuffix(ref, ".wrapper") {
		ref = strings.TrimSuffix(ref, ".wrapper")
	}

	return strings.TrimSpace(ref)
}

func resolveXTerminalEmulator() string {
	path, err := execLookPath("x-terminal-emulator")
	if err != nil {
		return ""
	}
	resolved, err := evalSymlinks(path)
	if err == nil && resolved != "" {
		return filepath.Base(resolved)
	}
	return filepath.Base(path)
}

// desktopTerminalQueries ask the desktop environment for its default
// terminal, in order.
var desktopTerminalQueries = [][]string{
	{"gsettings", "get", "org.gnome.desktop.default-applications.terminal", "exec"},
	{"kreadconfig6", "--group", "General", "--key", "TerminalApplication"},
	{"kreadconfig5", "--group", "General", "--key", "TerminalApplication"},
}

func defaultDetectSystemTerminal() string {
	if name := resolveXTerminalEmulator(); name != "" && name != "x-terminal-emulator" {
		return name
	}
	for _, q := range desktopTerminalQueries {
		if _, err := execLookPath(q[0]); err != nil {
			continue
		}
		out, err := execCommandOutput(q[0], q[1:]...)
		if err != nil {
			continue
		}
		if name := strings.Trim(strings.TrimSpace(string(out)), "\"'"); name != "" {
			return name
		}
	}
	return ""
}

// splitCommand tokenizes a command template with POSIX-like quoting:
// single quotes are literal, double quotes group, backslash escapes outside
// single quotes.
func splitCommand(s string) ([]string, error) {
	var (
		args  []string
		word  strings.Builder
		quote rune
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\\':
			if i+1 == len(runes) {
				return nil, fmt.Errorf("unfinished escape in command template")
			}
			i++
			word.WriteRune(runes[i])
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case unicode.IsSpace(r):
			if word.Len() > 0 {
				args = append(args, word.String())
			}
			word.Reset()
		default:
			word.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command template")
	}
	if word.Len() > 0 {
		args = append(args, word.String())
	}
	return args, nil
}
