package main

import (
	"context"
	"errors"
	"testing"

	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockMessenger records channel messages
type mockMessenger struct {
	DiscordMessenger
	sent []string
}

func (m *mockMessenger) SendChannelMessage(channelID string, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	for _, c := range components {
		if td, ok := c.(discordgo.TextDisplay); ok {
			m.sent = append(m.sent, td.Content)
		}
	}
	return &discordgo.Message{ChannelID: channelID}, nil
}

type mockVoice struct {
	channelID string
	err       error
	played    [][][]byte
}

func (m *mockVoice) UserVoiceChannel(gID, uID string) (string, error) {
	return m.channelID, m.err
}

func (m *mockVoice) SendOpusAudio(ctx context.Context, packets [][]byte, gID, cID string) error {
	m.played = append(m.played, packets)
	return nil
}

func TestAlerter_Alert(t *testing.T) {
	t.Parallel()

	audio := map[timer.Mode][][]byte{
		timer.ShortBreak: {{0x1}, {0x2}},
	}
	load := func(m timer.Mode) [][]byte { return audio[m] }
	session := Session{UserID: "u1", GuildID: "g1", ChannelID: "c1"}
	running := timer.Snapshot{State: timer.State{IsRunning: true}}

	testCases := []struct {
		name        string
		transition  timer.Transition
		voice       *mockVoice
		wantMessage string
		wantPlayed  int
	}{
		{
			name:        "expired work plays break alert",
			transition:  timer.Transition{From: timer.Work, To: timer.ShortBreak, Cause: timer.Expired, Snapshot: running},
			voice:       &mockVoice{channelID: "v1"},
			wantMessage: "<@u1> Work is over. Time for a Short Break!",
			wantPlayed:  1,
		},
		{
			name:       "skipped is silent",
			transition: timer.Transition{From: timer.Work, To: timer.ShortBreak, Cause: timer.Skipped, Snapshot: running},
			voice:      &mockVoice{channelID: "v1"},
		},
		{
			name:        "not in voice",
			transition:  timer.Transition{From: timer.Work, To: timer.ShortBreak, Cause: timer.Expired, Snapshot: running},
			voice:       &mockVoice{err: errors.New("state cache miss")},
			wantMessage: "<@u1> Work is over. Time for a Short Break!",
		},
		{
			name:        "no audio for mode",
			transition:  timer.Transition{From: timer.ShortBreak, To: timer.Work, Cause: timer.Expired, Snapshot: running},
			voice:       &mockVoice{channelID: "v1"},
			wantMessage: "<@u1> Short Break is over. Back to work!",
		},
		{
			name:        "parked by bad settings",
			transition:  timer.Transition{From: timer.Work, To: timer.ShortBreak, Cause: timer.Expired},
			voice:       &mockVoice{channelID: "v1"},
			wantMessage: "<@u1> Work is over. Timer stopped: check your `/settings`.",
			wantPlayed:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dm := &mockMessenger{}
			a := NewAlerter(dm, tc.voice, load, *log.Default())

			a.Alert(context.Background(), session, tc.transition)
			if tc.wantMessage == "" {
				assert.Empty(t, dm.sent)
			} else {
				require.Len(t, dm.sent, 1)
				assert.Equal(t, tc.wantMessage, dm.sent[0])
			}
			assert.Len(t, tc.voice.played, tc.wantPlayed)
		})
	}
}
