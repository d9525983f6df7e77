package pomotodo

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/benjamonnguyen/pomotodo/timer"
	"gopkg.in/yaml.v3"
)

var ErrInvalidSettings = errors.New("invalid timer settings")

const (
	maxMinutes = 240
	maxCycles  = 20
)

type yamlSettings struct {
	WorkMinutes           any `yaml:"work_minutes"`
	ShortBreakMinutes     any `yaml:"short_break_minutes"`
	LongBreakMinutes      any `yaml:"long_break_minutes"`
	CyclesBeforeLongBreak any `yaml:"cycles_before_long_break"`
}

// LoadSettingsFile reads default timer settings from YAML. A blank path or a
// missing file yields timer.DefaultSettings.
func LoadSettingsFile(path string) (timer.Settings, error) {
	settings := timer.DefaultSettings
	if path == "" {
		return settings, nil
	}

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	parsed, err := ApplySettings(settings, map[string]any{
		WorkOption:       fileData.WorkMinutes,
		ShortBreakOption: fileData.ShortBreakMinutes,
		LongBreakOption:  fileData.LongBreakMinutes,
		CyclesOption:     fileData.CyclesBeforeLongBreak,
	})
	if err != nil {
		return settings, fmt.Errorf("settings file %s: %w", path, err)
	}
	return parsed, nil
}

// ApplySettings overrides base with raw user input keyed by option name.
// Nil values are skipped. Values must be whole numbers within range.
func ApplySettings(base timer.Settings, raw map[string]any) (timer.Settings, error) {
	settings := base
	for key, v := range raw {
		if v == nil {
			continue
		}
		n, err := coerceInt(v)
		if err != nil {
			return base, fmt.Errorf("%w: %s: %w", ErrInvalidSettings, key, err)
		}
		limit := maxMinutes
		if key == CyclesOption {
			limit = maxCycles
		}
		if n < 1 || n > limit {
			return base, fmt.Errorf("%w: %s must be between 1 and %d", ErrInvalidSettings, key, limit)
		}
		switch key {
		case WorkOption:
			settings.WorkMinutes = n
		case ShortBreakOption:
			settings.ShortBreakMinutes = n
		case LongBreakOption:
			settings.LongBreakMinutes = n
		case CyclesOption:
			settings.CyclesBeforeLongBreak = n
		default:
			return base, fmt.Errorf("%w: unknown option %q", ErrInvalidSettings, key)
		}
	}
	return settings, nil
}

func coerceInt(v any) (int, error) {
	switch v := v.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("not a whole number: %v", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("not a whole number: %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported value %v (%T)", v, v)
	}
}
