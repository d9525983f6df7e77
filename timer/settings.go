package timer

// Settings are the four tunables of a pomodoro timer. A zero or negative
// value means the timer is not ready to start.
type Settings struct {
	WorkMinutes           int `json:"workMinutes"`
	ShortBreakMinutes     int `json:"shortBreakMinutes"`
	LongBreakMinutes      int `json:"longBreakMinutes"`
	CyclesBeforeLongBreak int `json:"cyclesBeforeLongBreak"`
}

var DefaultSettings = Settings{
	WorkMinutes:           25,
	ShortBreakMinutes:     5,
	LongBreakMinutes:      15,
	CyclesBeforeLongBreak: 4,
}

func (s Settings) Ready() bool {
	return s.WorkMinutes > 0 && s.ShortBreakMinutes > 0 && s.LongBreakMinutes > 0 && s.CyclesBeforeLongBreak > 0
}

// Seconds returns the full duration of mode m, never negative.
func (s Settings) Seconds(m Mode) int {
	var minutes int
	switch m {
	case Work:
		minutes = s.WorkMinutes
	case ShortBreak:
		minutes = s.ShortBreakMinutes
	case LongBreak:
		minutes = s.LongBreakMinutes
	}
	return max(minutes, 0) * 60
}

// BreakAfter returns the break that follows the given number of completed work phases.
func (s Settings) BreakAfter(cycles int) Mode {
	if s.CyclesBeforeLongBreak > 0 && cycles%s.CyclesBeforeLongBreak == 0 {
		return LongBreak
	}
	return ShortBreak
}

type SettingsProvider interface {
	Settings() Settings
}

// StaticSettings is a SettingsProvider that never changes.
type StaticSettings Settings

func (s StaticSettings) Settings() Settings {
	return Settings(s)
}
