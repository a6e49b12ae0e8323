package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/animg/internal/ipc"
	"github.com/1broseidon/animg/internal/sticker"
)

// scaleStep is the percentage +/- changes the scale by.
const scaleStep = 10

// stickerItem implements list.Item for the sticker sidebar.
type stickerItem struct {
	id  string
	cfg sticker.Config
	// err is set when the config could not be loaded.
	err error
}

func (i stickerItem) Title() string {
	mark := "○ "
	if i.cfg.Active {
		mark = "● "
	}
	return mark + i.cfg.Name
}

func (i stickerItem) Description() string {
	if i.err != nil {
		return "error: " + i.err.Error()
	}
	if !i.cfg.HasDimensions() {
		return fmt.Sprintf("%d%%", i.cfg.Scale)
	}
	w, h := i.cfg.Size()
	return fmt.Sprintf("%d%%  %dx%d", i.cfg.Scale, w, h)
}

func (i stickerItem) FilterValue() string { return i.cfg.Name }

// stickersLoadedMsg carries a fresh sticker listing.
type stickersLoadedMsg struct {
	items []stickerItem
	err   error
}

// actionDoneMsg reports the outcome of a daemon call and triggers a refresh.
type actionDoneMsg struct {
	text string
	err  error
}

// clearStatusMsg clears the status message after a delay.
type clearStatusMsg struct{}

type stickerMode int

const (
	modeBrowse stickerMode = iota
	modeScale
	modeImport
	modeDelete
)

// stickerForm holds huh-bound values. It lives on the heap so copies of the
// tab keep writing to the same fields.
type stickerForm struct {
	scale   string
	path    string
	confirm bool
	target  stickerItem
}

// StickersTab lists stickers and drives the daemon's per-sticker operations.
type StickersTab struct {
	list     list.Model
	client   Daemon
	maxScale int

	mode   stickerMode
	form   *huh.Form
	values *stickerForm

	statusText string
	statusErr  bool

	width  int
	height int
	ready  bool
}

// NewStickersTab creates a StickersTab. maxScale bounds rescaling.
func NewStickersTab(client Daemon, maxScale int) StickersTab {
	if maxScale <= 0 {
		maxScale = sticker.MaxScale
	}

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Stickers"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return StickersTab{
		list:     l,
		client:   client,
		maxScale: maxScale,
	}
}

// editing reports whether a form is capturing input.
func (st StickersTab) editing() bool {
	return st.mode != modeBrowse
}

// loadStickers fetches every file and its config from the daemon.
func loadStickers(client Daemon) tea.Msg {
	files, err := client.ListFiles()
	if err != nil {
		return stickersLoadedMsg{err: err}
	}
	items := make([]stickerItem, 0, len(files))
	for _, f := range files {
		item := stickerItem{id: f.ID, cfg: sticker.Config{Name: f.Name}}
		cfg, err := client.LoadConfig(f.ID)
		if err != nil {
			item.err = err
		} else {
			item.cfg = cfg.Config
			if item.cfg.Name == "" {
				item.cfg.Name = f.Name
			}
		}
		items = append(items, item)
	}
	return stickersLoadedMsg{items: items}
}

func (st StickersTab) refresh() tea.Cmd {
	client := st.client
	return func() tea.Msg { return loadStickers(client) }
}

// Init implements tea.Model.
func (st StickersTab) Init() tea.Cmd {
	return st.refresh()
}

// Update implements tea.Model.
func (st StickersTab) Update(msg tea.Msg) (StickersTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		st.width = msg.Width
		st.height = msg.Height
		st.updateListSize()
		st.ready = true
		return st, nil

	case stickersLoadedMsg:
		if msg.err != nil {
			return st.setStatus(fmt.Sprintf("error: %v", msg.err), true)
		}
		items := make([]list.Item, len(msg.items))
		for i, item := range msg.items {
			items[i] = item
		}
		cmd := st.list.SetItems(items)
		return st, cmd

	case actionDoneMsg:
		var status tea.Cmd
		if msg.err != nil {
			st, status = st.setStatus(fmt.Sprintf("error: %v", msg.err), true)
		} else {
			st, status = st.setStatus(msg.text, false)
		}
		return st, tea.Batch(status, st.refresh())

	case clearStatusMsg:
		st.statusText = ""
		st.statusErr = false
		return st, nil
	}

	if st.editing() {
		return st.updateForm(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok && st.list.FilterState() != list.Filtering {
		switch km.String() {
		case " ", "enter", "t":
			return st.toggleSelected()
		case "+", "=":
			return st.rescaleSelected(scaleStep)
		case "-":
			return st.rescaleSelected(-scaleStep)
		case "s":
			return st.startScaleForm()
		case "i", "a":
			return st.startImportForm()
		case "d", "x":
			return st.startDeleteForm()
		case "r":
			return st, st.refresh()
		}
	}

	var cmd tea.Cmd
	st.list, cmd = st.list.Update(msg)
	return st, cmd
}

func (st StickersTab) setStatus(text string, isErr bool) (StickersTab, tea.Cmd) {
	st.statusText = text
	st.statusErr = isErr
	return st, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (st *StickersTab) updateListSize() {
	// Reserve 2 lines for the tab status line.
	listHeight := st.height - 2
	if listHeight < 1 {
		listHeight = 1
	}
	st.list.SetSize(st.sidebarWidth(), listHeight)
}

func (st StickersTab) sidebarWidth() int {
	sw := st.width * 45 / 100
	if sw < 24 {
		sw = 24
	}
	if sw > 60 {
		sw = 60
	}
	return sw
}

func (st StickersTab) selected() (stickerItem, bool) {
	item, ok := st.list.SelectedItem().(stickerItem)
	return item, ok
}

func (st StickersTab) toggleSelected() (StickersTab, tea.Cmd) {
	item, ok := st.selected()
	if !ok {
		return st, nil
	}
	client := st.client
	active := !item.cfg.Active
	return st, func() tea.Msg {
		err := client.ToggleActive(item.id, active)
		state := "hidden"
		if active {
			state = "shown"
		}
		return actionDoneMsg{text: fmt.Sprintf("%s: %s", item.cfg.Name, state), err: err}
	}
}

// clampScale keeps scale within 1..max.
func clampScale(scale, max int) int {
	if scale < 1 {
		return 1
	}
	if scale > max {
		return max
	}
	return scale
}

func (st StickersTab) rescaleSelected(delta int) (StickersTab, tea.Cmd) {
	item, ok := st.selected()
	if !ok {
		return st, nil
	}
	current := item.cfg.Scale
	if current <= 0 {
		current = sticker.DefaultScale
	}
	next := clampScale(current+delta, st.maxScale)
	if next == current {
		return st, nil
	}
	return st, st.rescaleCmd(item, next)
}

func (st StickersTab) rescaleCmd(item stickerItem, scale int) tea.Cmd {
	client := st.client
	return func() tea.Msg {
		err := client.Rescale(item.id, scale)
		return actionDoneMsg{text: fmt.Sprintf("%s: %d%%", item.cfg.Name, scale), err: err}
	}
}

func (st StickersTab) formWidth() int {
	w := st.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

func (st StickersTab) startScaleForm() (StickersTab, tea.Cmd) {
	item, ok := st.selected()
	if !ok {
		return st, nil
	}
	st.values = &stickerForm{scale: strconv.Itoa(item.cfg.Scale), target: item}
	maxScale := st.maxScale
	st.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("scale").
				Title("Scale for " + item.cfg.Name).
				Description(fmt.Sprintf("Percent of the original size (1-%d)", maxScale)).
				Validate(func(s string) error {
					v, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("enter a whole number")
					}
					return sticker.ValidateScale(v, maxScale)
				}).
				Value(&st.values.scale),
		),
	).WithWidth(st.formWidth()).WithShowHelp(true).WithShowErrors(true)
	st.mode = modeScale
	return st, st.form.Init()
}

func (st StickersTab) startImportForm() (StickersTab, tea.Cmd) {
	st.values = &stickerForm{}
	st.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Import image").
				Description("Path to an image file. Leave empty to open the file dialog.").
				Value(&st.values.path),
		),
	).WithWidth(st.formWidth()).WithShowHelp(true).WithShowErrors(true)
	st.mode = modeImport
	return st, st.form.Init()
}

func (st StickersTab) startDeleteForm() (StickersTab, tea.Cmd) {
	item, ok := st.selected()
	if !ok {
		return st, nil
	}
	st.values = &stickerForm{target: item}
	st.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %s?", item.cfg.Name)).
				Description("The file is removed from the sticker folder.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&st.values.confirm),
		),
	).WithWidth(st.formWidth()).WithShowHelp(true)
	st.mode = modeDelete
	return st, st.form.Init()
}

func (st StickersTab) updateForm(msg tea.Msg) (StickersTab, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
		return st.closeForm(), nil
	}

	form, cmd := st.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		st.form = f
	}

	switch st.form.State {
	case huh.StateCompleted:
		return st.submitForm()
	case huh.StateAborted:
		return st.closeForm(), nil
	}
	return st, cmd
}

func (st StickersTab) closeForm() StickersTab {
	st.mode = modeBrowse
	st.form = nil
	st.values = nil
	return st
}

func (st StickersTab) submitForm() (StickersTab, tea.Cmd) {
	mode, values := st.mode, st.values
	st = st.closeForm()
	client := st.client

	switch mode {
	case modeScale:
		scale, err := strconv.Atoi(strings.TrimSpace(values.scale))
		if err != nil {
			return st.setStatus("error: scale must be a whole number", true)
		}
		return st, st.rescaleCmd(values.target, scale)

	case modeImport:
		path := strings.TrimSpace(values.path)
		if path == "" {
			st.statusText = "waiting for the file dialog..."
		}
		return st, func() tea.Msg { return importFile(client, path) }

	case modeDelete:
		if !values.confirm {
			return st, nil
		}
		item := values.target
		return st, func() tea.Msg {
			err := client.DeleteFile(item.id)
			return actionDoneMsg{text: "deleted " + item.cfg.Name, err: err}
		}
	}
	return st, nil
}

// importFile asks the daemon to import path, or to open its dialog when path
// is empty.
func importFile(client Daemon, path string) tea.Msg {
	entry, err := client.SelectFile(path)
	switch {
	case errors.Is(err, ipc.ErrSelectCancelled):
		return actionDoneMsg{text: "import cancelled"}
	case errors.Is(err, ipc.ErrFileExists):
		return actionDoneMsg{err: err}
	case err != nil:
		return actionDoneMsg{err: err}
	}
	return actionDoneMsg{text: "imported " + entry.Name}
}

// View implements tea.Model.
func (st StickersTab) View() string {
	if !st.ready || st.width == 0 || st.height == 0 {
		return ""
	}
	if st.editing() && st.form != nil {
		return st.viewForm()
	}

	sidebarWidth := st.sidebarWidth()
	detailWidth := st.width - sidebarWidth - 3
	if detailWidth < 10 {
		detailWidth = 10
	}

	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(st.height - 2).
		Render(st.list.View())

	sep := lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")).
		Render(strings.Repeat("│\n", max(st.height-2, 1)))

	detail := st.renderDetail(detailWidth)
	columns := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " "+sep, detail)

	return lipgloss.JoinVertical(lipgloss.Left, columns, st.renderTabStatus())
}

func (st StickersTab) renderDetail(width int) string {
	item, ok := st.selected()
	if !ok {
		return lipgloss.NewStyle().
			Width(width).
			Foreground(lipgloss.Color("241")).
			Render(" No stickers yet. Press 'i' to import an image.")
	}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(10).
		Align(lipgloss.Right).
		PaddingRight(2)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	cfg := item.cfg
	state := "hidden"
	if cfg.Active {
		state = "shown"
	}
	size := "(probing)"
	base := "(probing)"
	if cfg.HasDimensions() {
		w, h := cfg.Size()
		size = fmt.Sprintf("%dx%d", w, h)
		base = fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
	}
	position := "(default)"
	if x, y, ok := cfg.Position(); ok {
		position = fmt.Sprintf("%d,%d", x, y)
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Render(" " + cfg.Name)

	lines := []string{
		title,
		"",
		row("State", state),
		row("Scale", fmt.Sprintf("%d%%", cfg.Scale)),
		row("Size", size),
		row("Original", base),
		row("Position", position),
		row("ID", item.id),
	}
	if item.err != nil {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(" "+item.err.Error()))
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(lines, "\n"))
}

func (st StickersTab) renderTabStatus() string {
	left := ""
	if st.statusText != "" {
		color := lipgloss.Color("42")
		if st.statusErr {
			color = lipgloss.Color("196")
		}
		left = lipgloss.NewStyle().Foreground(color).Render(st.statusText)
	}

	right := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Render("space:show/hide  +/-:scale  s:set scale  i:import  d:delete  r:refresh  /:filter")

	gap := st.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(st.width).
		Padding(0, 1).
		Render(left + strings.Repeat(" ", gap) + right)
}

func (st StickersTab) viewForm() string {
	var title string
	switch st.mode {
	case modeScale:
		title = "Rescale sticker"
	case modeImport:
		title = "Import image"
	case modeDelete:
		title = "Delete sticker"
	}
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render(title) +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	return lipgloss.NewStyle().
		Width(st.width).
		Height(st.height).
		Padding(1, 2).
		Render(header + "\n\n" + st.form.View())
}
