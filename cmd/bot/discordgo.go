package main

import (
	"fmt"
	"strings"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/bwmarrin/discordgo"
)

type DiscordMessenger interface {
	EditChannelMessage(channelID, messageID string, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	SendChannelMessage(channelID string, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	Respond(it *discordgo.Interaction, wait bool, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	RespondEphemeral(it *discordgo.Interaction, components ...discordgo.MessageComponent) error
	EditResponse(it *discordgo.Interaction, components ...discordgo.MessageComponent) (*discordgo.Message, error)
	DeferMessageUpdate(it *discordgo.Interaction) (followup, error)
}

func NewDiscordMessenger(client *discordgo.Session) DiscordMessenger {
	return &messenger{
		client: client,
	}
}

type messenger struct {
	client *discordgo.Session
}

func (m *messenger) EditChannelMessage(channelID, messageID string, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	return m.client.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Flags:      discordgo.MessageFlagsIsComponentsV2,
		Components: &components,
	})
}

func (m *messenger) SendChannelMessage(channelID string, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	return m.client.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Flags:      discordgo.MessageFlagsIsComponentsV2,
		Components: components,
	})
}

// Respond returns message only when wait == true
func (m *messenger) Respond(it *discordgo.Interaction, wait bool, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	if err := m.client.InteractionRespond(it, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:      discordgo.MessageFlagsIsComponentsV2,
			Components: components,
		},
	}); err != nil {
		return nil, err
	}
	if wait {
		return m.client.InteractionResponse(it)
	}
	return nil, nil
}

func (m *messenger) RespondEphemeral(it *discordgo.Interaction, components ...discordgo.MessageComponent) error {
	return m.client.InteractionRespond(it, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:      discordgo.MessageFlagsIsComponentsV2 | discordgo.MessageFlagsEphemeral,
			Components: components,
		},
	})
}

func (m *messenger) EditResponse(it *discordgo.Interaction, components ...discordgo.MessageComponent) (*discordgo.Message, error) {
	return m.client.InteractionResponseEdit(it, &discordgo.WebhookEdit{
		Components: &components,
	})
}

type followup func(components ...discordgo.MessageComponent) (*discordgo.Message, error)

func (m *messenger) DeferMessageUpdate(it *discordgo.Interaction) (followup, error) {
	if err := m.client.InteractionRespond(it, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}); err != nil {
		return nil, err
	}
	return func(components ...discordgo.MessageComponent) (*discordgo.Message, error) {
		return m.client.FollowupMessageEdit(it, it.Message.ID, &discordgo.WebhookEdit{
			Components: &components,
		})
	}, nil
}

func GetUser(it *discordgo.Interaction) *discordgo.User {
	if it.Member != nil {
		return it.Member.User
	}
	return it.User
}

const (
	startInteraction = "start"
	stopInteraction  = "stop"
	skipInteraction  = "skip"
	endInteraction   = "end"
)

// InteractionID is encoded in a button's custom ID as "type:userID".
type InteractionID struct {
	Type   string
	UserID pomotodo.OwnerID
}

func FromCustomID(customID string) (InteractionID, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return InteractionID{}, fmt.Errorf("invalid customID: %s", customID)
	}
	return InteractionID{
		Type:   parts[0],
		UserID: pomotodo.OwnerID(parts[1]),
	}, nil
}

func (id InteractionID) ToCustomID() string {
	return fmt.Sprintf("%s:%s", id.Type, id.UserID)
}

type Color int

const (
	ColorGreen     Color = 0x57f287
	ColorBlue      Color = 0x3498db
	ColorPurple    Color = 0x9b59b6
	ColorRed       Color = 0xed4245
	ColorLightGrey Color = 0xbcc0c0
	ColorBlurple   Color = 0x5865f2
)

func (c Color) ToInt() *int {
	i := int(c)
	return &i
}

func TextDisplay(content string) discordgo.TextDisplay {
	return discordgo.TextDisplay{
		Content: content,
	}
}
