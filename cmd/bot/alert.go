package main

import (
	"context"
	"fmt"

	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/charmbracelet/log"
)

type voiceAdapter interface {
	UserVoiceChannel(gID, uID string) (string, error)
	SendOpusAudio(ctx context.Context, packets [][]byte, gID, cID string) error
}

// alerter tells the user a phase ended: a mention in the session channel, and
// the mode's audio clip in their voice channel when the phase ran out on its own.
type alerter struct {
	dm        DiscordMessenger
	voice     voiceAdapter
	loadAudio func(timer.Mode) [][]byte
	l         log.Logger
}

func NewAlerter(dm DiscordMessenger, voice voiceAdapter, loadAudio func(timer.Mode) [][]byte, logger log.Logger) *alerter {
	return &alerter{
		dm:        dm,
		voice:     voice,
		loadAudio: loadAudio,
		l:         logger,
	}
}

func (a *alerter) Alert(ctx context.Context, s Session, t timer.Transition) {
	if t.Cause != timer.Expired {
		return
	}

	if _, err := a.dm.SendChannelMessage(s.ChannelID, TextDisplay(transitionMessage(s, t))); err != nil {
		a.l.Error("failed to send transition message", "userID", s.UserID, "channelID", s.ChannelID, "err", err)
	}

	if s.GuildID == "" || a.voice == nil {
		return
	}
	packets := a.loadAudio(t.To)
	if len(packets) == 0 {
		return
	}
	voiceCID, err := a.voice.UserVoiceChannel(s.GuildID, string(s.UserID))
	if err != nil || voiceCID == "" {
		a.l.Debug("user not in voice - skip audio alert", "userID", s.UserID, "err", err)
		return
	}
	if err := a.voice.SendOpusAudio(ctx, packets, s.GuildID, voiceCID); err != nil {
		a.l.Error("failed to play transition alert", "guildID", s.GuildID, "channelID", voiceCID, "err", err)
	}
}

func transitionMessage(s Session, t timer.Transition) string {
	if !t.Snapshot.IsRunning {
		return fmt.Sprintf("<@%s> %s is over. Timer stopped: check your `/settings`.", s.UserID, t.From)
	}
	if t.To == timer.Work {
		return fmt.Sprintf("<@%s> %s is over. Back to work!", s.UserID, t.From)
	}
	return fmt.Sprintf("<@%s> %s is over. Time for a %s!", s.UserID, t.From, t.To)
}
