package config

// builtinTerminalCommands maps terminal executables to the template used to
// run a command inside them. {cmd} is replaced by the command's argv.
var builtinTerminalCommands = map[string]string{
	"kitty":          "kitty --class animg-settings {cmd}",
	"ghostty":        "ghostty -e {cmd}",
	"wezterm":        "wezterm start -- {cmd}",
	"alacritty":      "alacritty --class animg-settings -e {cmd}",
	"foot":           "foot --app-id animg-settings {cmd}",
	"gnome-terminal": "gnome-terminal -- {cmd}",
	"konsole":        "konsole -e {cmd}",
	"xfce4-terminal": "xfce4-terminal -x {cmd}",
	"tilix":          "tilix -e {cmd}",
	"xterm":          "xterm -class animg-settings -e {cmd}",
}

// fallbackTerminals is the probe order when nothing else names a terminal.
var fallbackTerminals = []string{"kitty", "ghostty", "wezterm", "alacritty", "foot", "gnome-terminal", "konsole", "xfce4-terminal", "tilix", "xterm"}
