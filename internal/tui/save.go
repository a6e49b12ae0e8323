package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/animg/internal/config"
)

type savePhase int

const (
	saveHidden  savePhase = iota
	savePreview           // listing changes, awaiting confirm
	saveResult            // showing outcome message
)

const unsetValue = "(unset)"

// configChange is one YAML key whose value differs between two configs.
type configChange struct {
	key      string
	from, to string
}

// SaveOverlay lists the pending config changes and writes them on
// confirmation.
type SaveOverlay struct {
	phase   savePhase
	changes []configChange
	err     error
	savedTo string
	offset  int
}

// Active reports whether the overlay is visible.
func (s SaveOverlay) Active() bool {
	return s.phase != saveHidden
}

// Show opens the preview, or a "no changes" notice when nothing differs.
func (s *SaveOverlay) Show(original, current *config.Config) {
	*s = SaveOverlay{changes: configChanges(original, current)}
	if len(s.changes) == 0 {
		s.phase = saveResult
		s.err = fmt.Errorf("no changes to save")
		return
	}
	s.phase = savePreview
}

// SaveSucceeded reports whether the last save completed without error.
func (s SaveOverlay) SaveSucceeded() bool {
	return s.phase == saveResult && s.err == nil
}

// Update handles input while the overlay is active. Confirming writes cfg to
// path.
func (s SaveOverlay) Update(msg tea.Msg, cfg *config.Config, path string) SaveOverlay {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return s
	}
	if s.phase == saveResult {
		s.phase = saveHidden
		return s
	}
	switch km.String() {
	case "esc", "n":
		s.phase = saveHidden
	case "enter", "y":
		if s.err = cfg.Save(path); s.err == nil {
			s.savedTo = path
		}
		s.phase = saveResult
	case "up", "k":
		s.offset = max(0, s.offset-1)
	case "down", "j":
		s.offset = min(s.offset+1, max(0, len(s.changes)-1))
	}
	return s
}

var (
	overlayBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
	overlayTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	overlayKey   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	overlayFrom  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Strikethrough(true)
	overlayTo    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	overlayHint  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the overlay centered in the content area.
func (s SaveOverlay) View(width, height int) string {
	var content string
	boxW := min(max(width-8, 30), 80)
	switch s.phase {
	case savePreview:
		content = s.viewChanges(boxW-6, height-10)
	case saveResult:
		boxW = min(boxW, 60)
		content = s.viewResult()
	default:
		return ""
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlayBox.Width(boxW).Render(content))
}

func (s SaveOverlay) viewChanges(innerW, rows int) string {
	rows = max(rows, 3)
	keyW := 0
	for _, c := range s.changes {
		keyW = max(keyW, len(c.key))
	}

	start := min(s.offset, max(0, len(s.changes)-rows))
	end := min(start+rows, len(s.changes))
	lines := make([]string, 0, end-start)
	for _, c := range s.changes[start:end] {
		line := overlayKey.Render(fmt.Sprintf("%-*s", keyW, c.key)) + "  " +
			overlayFrom.Render(c.from) + " → " + overlayTo.Render(c.to)
		lines = append(lines, lipgloss.NewStyle().MaxWidth(innerW).Render(line))
	}

	title := overlayTitle.Render(fmt.Sprintf("Save Settings: %d change(s)", len(s.changes)))
	footer := overlayHint.Render("enter/y: save  esc/n: cancel  j/k: scroll")
	return title + "\n\n" + strings.Join(lines, "\n") + "\n\n" + footer
}

func (s SaveOverlay) viewResult() string {
	var msg string
	if s.err != nil {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("Error: " + s.err.Error())
	} else {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true).Render("Settings saved to " + s.savedTo)
		msg += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Render("Restart the daemon to apply them.")
	}
	return msg + "\n\n" + overlayHint.Render("press any key to dismiss")
}

// configChanges lists the keys whose values differ, sorted by key.
func configChanges(original, current *config.Config) []configChange {
	if original == nil || current == nil {
		return nil
	}
	before, err := flattenConfig(original)
	if err != nil {
		return nil
	}
	after, err := flattenConfig(current)
	if err != nil {
		return nil
	}

	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	var changes []configChange
	for k := range keys {
		from, ok := before[k]
		if !ok {
			from = unsetValue
		}
		to, ok := after[k]
		if !ok {
			to = unsetValue
		}
		if from != to {
			changes = append(changes, configChange{key: k, from: from, to: to})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].key < changes[j].key })
	return changes
}

// flattenConfig maps every YAML leaf of cfg to its dotted key ("log.level").
func flattenConfig(cfg *config.Config) (map[string]string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		if m, ok := v.(map[string]any); ok {
			for k, child := range m {
				if prefix != "" {
					k = prefix + "." + k
				}
				walk(k, child)
			}
			return
		}
		s := fmt.Sprint(v)
		if s == "" {
			s = `""`
		}
		out[prefix] = s
	}
	walk("", tree)
	return out, nil
}

// cloneConfig copies cfg. Config holds only value fields.
func cloneConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return nil
	}
	clone := *cfg
	return &clone
}
