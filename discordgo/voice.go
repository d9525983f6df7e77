// Package discordgo provides Discord API adapters using package github.com/bwmarrin/discordgo
package discordgo

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
)

type discordgoAdapter struct {
	cl *discordgo.Session
	l  log.Logger
}

func NewDiscordAdapter(cl *discordgo.Session, logger log.Logger) *discordgoAdapter {
	return &discordgoAdapter{
		cl: cl,
		l:  logger,
	}
}

// UserVoiceChannel returns the voice channel the user is connected to in the guild.
func (w *discordgoAdapter) UserVoiceChannel(gID, uID string) (string, error) {
	vs, err := w.cl.State.VoiceState(gID, uID)
	if err != nil {
		return "", err
	}
	return vs.ChannelID, nil
}

func (w *discordgoAdapter) SendOpusAudio(ctx context.Context, packets [][]byte, gID, cID string) error {
	if packets == nil {
		return nil
	}
	conn, err := w.cl.ChannelVoiceJoin(gID, cID, false, true)
	if err != nil {
		return err
	}
	if err := conn.Speaking(true); err != nil {
		return err
	}
	w.l.Debug("sending opus audio", "guildID", gID, "channelID", cID, "packets", len(packets))
	for _, p := range packets {
		if err := ctx.Err(); err != nil {
			_ = conn.Speaking(false)
			return err
		}
		conn.OpusSend <- p
	}
	return conn.Speaking(false)
}

// Close disconnects every open voice connection.
func (w *discordgoAdapter) Close() {
	w.cl.RLock()
	conns := slices.Collect(maps.Values(w.cl.VoiceConnections))
	w.cl.RUnlock()

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Go(func() {
			if err := conn.Disconnect(); err != nil {
				w.l.Error("failed voice disconnect", "guildID", conn.GuildID, "err", err)
			}
		})
	}
	wg.Wait()
}
