package pomotodo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySettings(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		raw     map[string]any
		want    timer.Settings
		wantErr bool
	}{
		{
			name: "no overrides",
			raw:  map[string]any{WorkOption: nil},
			want: timer.DefaultSettings,
		},
		{
			name: "command option floats",
			raw:  map[string]any{WorkOption: float64(50), CyclesOption: float64(2)},
			want: timer.Settings{WorkMinutes: 50, ShortBreakMinutes: 5, LongBreakMinutes: 15, CyclesBeforeLongBreak: 2},
		},
		{
			name: "free text",
			raw:  map[string]any{ShortBreakOption: " 7 ", LongBreakOption: "20"},
			want: timer.Settings{WorkMinutes: 25, ShortBreakMinutes: 7, LongBreakMinutes: 20, CyclesBeforeLongBreak: 4},
		},
		{name: "fraction", raw: map[string]any{WorkOption: 12.5}, wantErr: true},
		{name: "text fraction", raw: map[string]any{WorkOption: "12.5"}, wantErr: true},
		{name: "zero", raw: map[string]any{WorkOption: 0}, wantErr: true},
		{name: "negative", raw: map[string]any{ShortBreakOption: "-3"}, wantErr: true},
		{name: "too many cycles", raw: map[string]any{CyclesOption: 21}, wantErr: true},
		{name: "garbage", raw: map[string]any{LongBreakOption: "ten"}, wantErr: true},
		{name: "unknown key", raw: map[string]any{"snooze": 3}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ApplySettings(timer.DefaultSettings, tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSettings)
				assert.Equal(t, timer.DefaultSettings, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.Ready())
		})
	}
}

func TestLoadSettingsFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got, err := LoadSettingsFile("")
	require.NoError(t, err)
	assert.Equal(t, timer.DefaultSettings, got)

	got, err = LoadSettingsFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, timer.DefaultSettings, got)

	valid := filepath.Join(dir, "valid.yaml")
	require.NoError(t, os.WriteFile(valid, []byte("work_minutes: 50\nshort_break_minutes: \"10\"\ncycles_before_long_break: 3\n"), 0o644))
	got, err = LoadSettingsFile(valid)
	require.NoError(t, err)
	assert.Equal(t, timer.Settings{WorkMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 15, CyclesBeforeLongBreak: 3}, got)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("long_break_minutes: -1\n"), 0o644))
	got, err = LoadSettingsFile(invalid)
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, timer.DefaultSettings, got)
}
