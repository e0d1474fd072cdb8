package editor

import (
	"strings"
	"unicode"
)

// codeToKeyName maps physical key codes to the names the backend's key
// injector understands.
var codeToKeyName = map[string]string{
	"ControlLeft": "left ctrl", "ControlRight": "right ctrl",
	"ShiftLeft": "left shift", "ShiftRight": "right shift",
	"AltLeft": "left alt", "AltRight": "right alt",
	"MetaLeft": "left windows", "MetaRight": "right windows",
	"Numpad0": "num 0", "Numpad1": "num 1", "Numpad2": "num 2",
	"Numpad3": "num 3", "Numpad4": "num 4", "Numpad5": "num 5",
	"Numpad6": "num 6", "Numpad7": "num 7", "Numpad8": "num 8",
	"Numpad9": "num 9",
	"NumpadAdd": "num +", "NumpadSubtract": "num -",
	"NumpadMultiply": "num *", "NumpadDivide": "num /",
	"NumpadDecimal": "num .", "NumpadEnter": "num enter",
	"Space": "space", "Enter": "enter", "Escape": "esc", "Tab": "tab",
	"Backspace": "backspace", "ArrowUp": "up", "ArrowDown": "down",
	"ArrowLeft": "left", "ArrowRight": "right",
	"PageUp": "page up", "PageDown": "page down", "Home": "home", "End": "end",
	"Insert": "insert", "Delete": "delete",
	"Minus": "-", "Equal": "=", "BracketLeft": "[", "BracketRight": "]",
	"Backslash": "\\", "Semicolon": ";", "Quote": "'", "Comma": ",",
	"Period": ".", "Slash": "/", "Backquote": "`",
}

// terminalKeyNames maps terminal key tokens to backend key names.
var terminalKeyNames = map[string]string{
	"ctrl": "left ctrl", "shift": "left shift", "alt": "left alt",
	"enter": "enter", "esc": "esc", "tab": "tab", "backspace": "backspace",
	"up": "up", "down": "down", "left": "left", "right": "right",
	"pgup": "page up", "pgdown": "page down", "home": "home", "end": "end",
	"insert": "insert", "delete": "delete", " ": "space", "space": "space",
}

// KeyName translates a physical key code such as "KeyA", "Digit1", "F5" or
// "ControlLeft". It reports false for unknown codes.
func KeyName(code string) (string, bool) {
	if name, ok := codeToKeyName[code]; ok {
		return name, true
	}
	if rest := strings.TrimPrefix(code, "Key"); rest != code && len(rest) == 1 && rest[0] >= 'A' && rest[0] <= 'Z' {
		return strings.ToLower(rest), true
	}
	if rest := strings.TrimPrefix(code, "Digit"); rest != code && len(rest) == 1 && rest[0] >= '0' && rest[0] <= '9' {
		return rest, true
	}
	if isFunctionKey(strings.ToLower(code)) {
		return strings.ToLower(code), true
	}
	return "", false
}

func isFunctionKey(name string) bool {
	if len(name) < 2 || name[0] != 'f' {
		return false
	}
	n := 0
	for _, r := range name[1:] {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return n >= 1 && n <= 24
}

// TerminalKeyNames translates a terminal key chord such as "ctrl+shift+a"
// or "f5" into backend key names in press order.
func TerminalKeyNames(chord string) []string {
	if chord == "" {
		return nil
	}
	var names []string
	parts := strings.Split(chord, "+")
	// "ctrl++" ends in an empty part for the plus key itself.
	for i, p := range parts {
		if p == "" && i == len(parts)-1 && i > 0 {
			p = "+"
		}
		if p == "" {
			continue
		}
		if name, ok := terminalKeyNames[p]; ok {
			names = append(names, name)
			continue
		}
		names = append(names, strings.ToLower(p))
	}
	return names
}

// Combo accumulates keys in press order, ignoring repeats.
type Combo struct {
	keys []string
}

// ParseCombo reads a stored keys_str.
func ParseCombo(keysStr string) Combo {
	var c Combo
	for _, k := range strings.Split(keysStr, "+") {
		c.Add(k)
	}
	return c
}

// Add appends a key unless it is already present.
func (c *Combo) Add(name string) {
	if name == "" {
		return
	}
	for _, k := range c.keys {
		if k == name {
			return
		}
	}
	c.keys = append(c.keys, name)
}

// Clear removes every key.
func (c *Combo) Clear() {
	c.keys = nil
}

// Keys returns the keys in press order.
func (c Combo) Keys() []string {
	return append([]string(nil), c.keys...)
}

// String returns the plus-joined keys_str.
func (c Combo) String() string {
	return strings.Join(c.keys, "+")
}

// Friendly returns a display form such as "Left Ctrl + F1".
func (c Combo) Friendly() string {
	names := make([]string, len(c.keys))
	for i, k := range c.keys {
		names[i] = FriendlyKeyName(k)
	}
	return strings.Join(names, " + ")
}

// FriendlyKeyName title-cases each word of a key name.
func FriendlyKeyName(key string) string {
	words := strings.Split(key, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
