package main

import (
	"strings"
	"testing"
	"time"

	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_TimerBar(t *testing.T) {
	t.Parallel()

	const phaseSeconds = 30 * 60

	testCases := []struct {
		name           string
		remaining      int
		phaseSeconds   int
		expectedFilled int
	}{
		{
			name:           "just started",
			remaining:      phaseSeconds,
			phaseSeconds:   phaseSeconds,
			expectedFilled: 20,
		},
		{
			name:           "half elapsed",
			remaining:      15 * 60,
			phaseSeconds:   phaseSeconds,
			expectedFilled: 10,
		},
		{
			name:           "quarter elapsed",
			remaining:      22*60 + 30,
			phaseSeconds:   phaseSeconds,
			expectedFilled: 15,
		},
		{
			name:           "nothing remaining",
			remaining:      0,
			phaseSeconds:   phaseSeconds,
			expectedFilled: 0,
		},
		{
			name:           "remaining above phase after settings change",
			remaining:      40 * 60,
			phaseSeconds:   phaseSeconds,
			expectedFilled: 20,
		},
		{
			name:           "unconfigured phase",
			remaining:      60,
			phaseSeconds:   0,
			expectedFilled: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var s Session
			s.Timer.RemainingSeconds = tc.remaining
			s.Timer.PhaseSeconds = tc.phaseSeconds

			expected := strings.Repeat(timerBarFilledChar, tc.expectedFilled) + strings.Repeat(timerBarEmptyChar, timerBarLength-tc.expectedFilled)
			assert.Equal(t, expected, s.TimerBar())
		})
	}
}

func TestSession_Cycle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		cyclesCompleted, n, want int
	}{
		{1, 4, 1},
		{4, 4, 4},
		{5, 4, 1},
		{9, 4, 1},
		{3, 0, 3},
	}
	for _, tc := range testCases {
		var s Session
		s.Timer.CyclesCompleted = tc.cyclesCompleted
		s.Settings.CyclesBeforeLongBreak = tc.n
		assert.Equal(t, tc.want, s.Cycle(), "cycles=%d n=%d", tc.cyclesCompleted, tc.n)
	}
}

func TestFormatRemaining(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "25:00", formatRemaining(25*time.Minute))
	assert.Equal(t, "04:05", formatRemaining(4*time.Minute+5*time.Second))
	assert.Equal(t, "00:00", formatRemaining(0))
}

func TestSessionMessageComponents(t *testing.T) {
	t.Parallel()

	s := Session{
		UserID:   "u1",
		Settings: timer.DefaultSettings,
		Timer: timer.Snapshot{
			State: timer.State{
				Mode:             timer.Work,
				RemainingSeconds: 1500,
				CyclesCompleted:  1,
				IsRunning:        true,
			},
			PhaseSeconds: 1500,
		},
	}

	t.Run("running shows stop toggle", func(t *testing.T) {
		t.Parallel()
		components := SessionMessageComponents(s)
		require.Len(t, components, 3)
		row, ok := components[2].(discordgo.ActionsRow)
		require.True(t, ok)
		require.Len(t, row.Components, 3)
		toggle := row.Components[0].(discordgo.Button)
		assert.Equal(t, "Stop", toggle.Label)
		assert.Equal(t, "stop:u1", toggle.CustomID)
	})

	t.Run("stopped shows start toggle", func(t *testing.T) {
		t.Parallel()
		stopped := s
		stopped.Timer.IsRunning = false
		row := SessionMessageComponents(stopped)[2].(discordgo.ActionsRow)
		toggle := row.Components[0].(discordgo.Button)
		assert.Equal(t, "Start", toggle.Label)
		assert.Equal(t, "start:u1", toggle.CustomID)
	})

	t.Run("accent follows state", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name string
			edit func(*Session)
			want Color
		}{
			{name: "work", edit: func(*Session) {}, want: ColorGreen},
			{name: "short break", edit: func(s *Session) { s.Timer.Mode = timer.ShortBreak }, want: ColorBlue},
			{name: "long break", edit: func(s *Session) { s.Timer.Mode = timer.LongBreak }, want: ColorPurple},
			{name: "stopped", edit: func(s *Session) { s.Timer.IsRunning = false }, want: ColorLightGrey},
			{name: "not configured", edit: func(s *Session) { s.Settings = timer.Settings{}; s.Timer.IsRunning = false }, want: ColorRed},
		}
		for _, tt := range tests {
			session := s
			tt.edit(&session)
			container, ok := SessionMessageComponents(session)[1].(discordgo.Container)
			require.True(t, ok, tt.name)
			require.NotNil(t, container.AccentColor, tt.name)
			assert.Equal(t, int(tt.want), *container.AccentColor, tt.name)
		}
	})

	t.Run("ended", func(t *testing.T) {
		t.Parallel()
		ended := s
		ended.Ended = true
		ended.Timer.CyclesCompleted = 3
		components := SessionMessageComponents(ended)
		require.Len(t, components, 1)
		assert.Contains(t, components[0].(discordgo.TextDisplay).Content, "2 pomodoros")
	})
}
