package baseline

import (
	"fmt"
	"strings"
)

// Mode selects how a Validator treats violations.
type Mode int

const (
	// ModeNone reports every violation.
	ModeNone Mode = iota
	// ModeValidate hides violations found in the baseline.
	ModeValidate
	// ModeUpdate hides violations not found in the baseline.
	ModeUpdate
)

var modeNames = map[Mode]string{
	ModeNone:     "none",
	ModeValidate: "validate",
	ModeUpdate:   "update",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "none", "validate" or "update". The empty string is
// ModeNone.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return ModeNone, nil
	}
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return ModeNone, fmt.Errorf("invalid baseline mode %q (want none, validate or update)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
