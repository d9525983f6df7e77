package timer

import (
	"fmt"
	"strings"
)

type Mode uint8

const (
	_ Mode = iota
	Work
	ShortBreak
	LongBreak
)

func (m Mode) Valid() bool {
	return m >= Work && m <= LongBreak
}

func (m Mode) String() string {
	switch m {
	case Work:
		return "Work"
	case ShortBreak:
		return "Short Break"
	case LongBreak:
		return "Long Break"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Key is the stable identifier used in command options and JSON.
func (m Mode) Key() string {
	switch m {
	case Work:
		return "work"
	case ShortBreak:
		return "short_break"
	case LongBreak:
		return "long_break"
	default:
		return ""
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, uint8(m))
	}
	return []byte(m.Key()), nil
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "work", "pomodoro":
		return Work, nil
	case "short_break", "short":
		return ShortBreak, nil
	case "long_break", "long":
		return LongBreak, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Cause tells why the engine left a phase.
type Cause uint8

const (
	_ Cause = iota
	Expired
	Skipped
)

func (c Cause) String() string {
	switch c {
	case Expired:
		return "expired"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("Cause(%d)", uint8(c))
	}
}
