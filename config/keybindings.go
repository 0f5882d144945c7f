package config

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

const (
	defaultPrimary   = "alt"
	defaultSecondary = "alt+shift"
)

// KeyBindingsConfig is keybindings.toml: two modifiers plus optional
// per-action overrides
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"`
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`
	Secondary string `toml:"secondary"`
}

type modifierSlot int

const (
	noModifier modifierSlot = iota
	primarySlot
	secondarySlot
)

type binding struct {
	slot modifierSlot
	key  string
}

var actionRegistry = map[string]binding{
	"help":         {primarySlot, "h"},
	"new_chat":     {primarySlot, "n"},
	"delete_chat":  {primarySlot, "d"},
	"search_chats": {primarySlot, "f"},
	"focus_toggle": {noModifier, "tab"},
	"refresh":      {primarySlot, "r"},
	"export_chat":  {primarySlot, "e"},
	"select_model": {primarySlot, "m"},
	"logout":       {secondarySlot, "l"},
	"about":        {secondarySlot, "a"},
	"quit":         {primarySlot, "q"},

	"scroll_down":      {primarySlot, "j"},
	"scroll_up":        {primarySlot, "k"},
	"half_page_down":   {secondarySlot, "j"},
	"half_page_up":     {secondarySlot, "k"},
	"scroll_to_top":    {primarySlot, "g"},
	"scroll_to_bottom": {secondarySlot, "g"},

	"yank_last_response": {primarySlot, "y"},
	"yank_conversation":  {primarySlot, "c"},

	"sidebar_down":       {noModifier, "j"},
	"sidebar_up":         {noModifier, "k"},
	"sidebar_down_arrow": {noModifier, "down"},
	"sidebar_up_arrow":   {noModifier, "up"},

	"clear_input": {primarySlot, "u"},
}

func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   defaultPrimary,
			Secondary: defaultSecondary,
		},
	}
}

// LoadKeybindings reads <dataDir>/keybindings.toml, seeding it on first run
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	kb := DefaultKeybindings()
	if err := decodeOrSeed(filepath.Join(dataDir, "keybindings.toml"), kb, GenerateKeybindingsTemplate()); err != nil {
		return nil, err
	}
	return kb, nil
}

// GenerateKeybindingsTemplate returns the commented keybindings.toml
func GenerateKeybindingsTemplate() string {
	actions := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		actions = append(actions, name)
	}
	slices.Sort(actions)

	var sb strings.Builder
	sb.WriteString(`# chatwave keybindings
# Location: <data_directory>/keybindings.toml

[modifiers]
# alt, ctrl, meta or super. Switch to ctrl or super if your terminal
# multiplexer or window manager already owns alt.
primary = "alt"
secondary = "alt+shift"

[actions]
# Per-action overrides, e.g.
#   new_chat = "ctrl+t"
#   quit = "ctrl+shift+q"
#
# Actions:
`)
	for _, name := range actions {
		sb.WriteString("#   " + name + "\n")
	}
	return sb.String()
}

func (kb *KeyBindingsConfig) primary() string {
	if kb.Modifiers.Primary == "" {
		return defaultPrimary
	}
	return kb.Modifiers.Primary
}

func (kb *KeyBindingsConfig) secondary() string {
	if kb.Modifiers.Secondary == "" {
		return defaultSecondary
	}
	return kb.Modifiers.Secondary
}

// PrimaryKey returns key under the primary modifier, e.g. "alt+s"
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	return kb.primary() + "+" + key
}

// SecondaryKey returns key under the secondary modifier. Terminals report
// shift+letter as the upper-case letter, so "alt+shift" with "s" gives
// "alt+S" while "f1" stays "alt+shift+f1".
func (kb *KeyBindingsConfig) SecondaryKey(key string) string {
	mods := strings.Split(kb.secondary(), "+")
	isLetter := len(key) == 1 && key[0] >= 'a' && key[0] <= 'z'
	if !isLetter || !slices.ContainsFunc(mods, isShift) {
		return kb.secondary() + "+" + key
	}

	mods = slices.DeleteFunc(mods, isShift)
	return strings.Join(append(mods, strings.ToUpper(key)), "+")
}

func isShift(mod string) bool {
	return strings.EqualFold(mod, "shift")
}

// GetActionKey returns the key string bubbletea reports for action, honouring
// overrides. Unknown actions map to "".
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override := kb.Actions[action]; override != "" {
		return override
	}

	b, ok := actionRegistry[action]
	if !ok {
		return ""
	}
	switch b.slot {
	case primarySlot:
		return kb.PrimaryKey(b.key)
	case secondarySlot:
		return kb.SecondaryKey(b.key)
	default:
		return b.key
	}
}

// DisplayActionKey renders an action's key for help text: "alt+L" becomes
// "Alt+Shift+L"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	return DisplayKey(kb.GetActionKey(action))
}

// DisplayKey renders a bubbletea key string for help text
func DisplayKey(key string) string {
	if key == "" {
		return ""
	}

	parts := strings.Split(key, "+")
	hasShift := slices.ContainsFunc(parts, isShift)
	out := make([]string, 0, len(parts)+1)
	for i, part := range parts {
		if part == "" {
			continue
		}
		r := rune(part[0])
		if len(part) == 1 && unicode.IsUpper(r) && !hasShift && i > 0 {
			out = append(out, "Shift")
		}
		out = append(out, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(out, "+")
}
