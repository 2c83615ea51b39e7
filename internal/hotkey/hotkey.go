// Package hotkey parses and canonicalizes global hotkey strings of the
// form (Modifier '+')+ Key.
package hotkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Hotkey is a parsed combination. Modifiers are canonically ordered
// Ctrl, Alt, Shift.
type Hotkey struct {
	Modifiers []string
	Key       string
}

// String renders the canonical form.
func (h Hotkey) String() string {
	return strings.Join(append(append([]string(nil), h.Modifiers...), h.Key), "+")
}

var modifierOrder = []string{"Ctrl", "Alt", "Shift"}

// Combinations the host OS claims for itself.
var reserved = []string{
	"Alt+Tab",
	"Alt+F4",
	"Ctrl+Esc",
	"Alt+Esc",
	"Ctrl+Shift+Esc",
	"Alt+Space",
}

// Parse validates a hotkey string. At least one modifier is required,
// repeated modifiers collapse, and reserved OS combinations fail.
func Parse(input string) (Hotkey, error) {
	parts := strings.Split(strings.TrimSpace(input), "+")
	if len(parts) < 2 {
		return Hotkey{}, fmt.Errorf("hotkey %q needs at least one modifier and a key", input)
	}

	seen := make(map[string]bool, 3)
	for _, part := range parts[:len(parts)-1] {
		mod, ok := canonicalModifier(part)
		if !ok {
			return Hotkey{}, fmt.Errorf("hotkey %q has unknown modifier %q", input, strings.TrimSpace(part))
		}
		seen[mod] = true
	}

	key, ok := canonicalKey(parts[len(parts)-1])
	if !ok {
		return Hotkey{}, fmt.Errorf("hotkey %q has unknown key %q", input, strings.TrimSpace(parts[len(parts)-1]))
	}

	h := Hotkey{Key: key}
	for _, mod := range modifierOrder {
		if seen[mod] {
			h.Modifiers = append(h.Modifiers, mod)
		}
	}

	canonical := h.String()
	for _, r := range reserved {
		if canonical == r {
			return Hotkey{}, fmt.Errorf("hotkey %q is reserved by the OS", canonical)
		}
	}
	// Esc and Tab exist only so reserved combinations report as
	// reserved; they are not bindable keys.
	if key == "Esc" || key == "Tab" {
		return Hotkey{}, fmt.Errorf("hotkey %q key %q cannot be bound", input, key)
	}
	return h, nil
}

func canonicalModifier(part string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(part)) {
	case "ctrl", "control":
		return "Ctrl", true
	case "alt":
		return "Alt", true
	case "shift":
		return "Shift", true
	}
	return "", false
}

// canonicalKey accepts A..Z, 0..9, Space and F1..F24, plus Esc and Tab
// so reserved combinations canonicalize before Parse rejects them.
func canonicalKey(part string) (string, bool) {
	trimmed := strings.TrimSpace(part)
	upper := strings.ToUpper(trimmed)
	switch {
	case len(upper) == 1 && (upper[0] >= 'A' && upper[0] <= 'Z' || upper[0] >= '0' && upper[0] <= '9'):
		return upper, true
	case strings.EqualFold(trimmed, "space"):
		return "Space", true
	case strings.EqualFold(trimmed, "esc") || strings.EqualFold(trimmed, "escape"):
		return "Esc", true
	case strings.EqualFold(trimmed, "tab"):
		return "Tab", true
	}
	if rest, ok := strings.CutPrefix(upper, "F"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 24 {
			return "F" + strconv.Itoa(n), true
		}
	}
	return "", false
}
