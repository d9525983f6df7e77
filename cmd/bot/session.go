package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/bwmarrin/discordgo"
)

const (
	timerBarFilledChar = "⣶"
	timerBarEmptyChar  = "⡀"
	timerBarLength     = 20
)

// Session is a point-in-time view of a user's timer as shown in Discord.
type Session struct {
	UserID    pomotodo.OwnerID `json:"userID"`
	GuildID   string           `json:"guildID,omitempty"`
	ChannelID string           `json:"channelID"`
	MessageID string           `json:"messageID,omitempty"`
	TaskTitle string           `json:"taskTitle,omitempty"`

	Settings        timer.Settings  `json:"settings"`
	PendingSettings *timer.Settings `json:"pendingSettings,omitempty"`
	Timer           timer.Snapshot  `json:"timer"`
	Ended           bool            `json:"ended"`
}

// Cycle is the 1-based position of the current work phase within a long break round.
func (s Session) Cycle() int {
	n := s.Settings.CyclesBeforeLongBreak
	if n <= 0 {
		return s.Timer.CyclesCompleted
	}
	return (s.Timer.CyclesCompleted-1)%n + 1
}

// PomodorosDone counts finished work phases. CyclesCompleted already includes
// the current one while in Work.
func (s Session) PomodorosDone() int {
	if s.Timer.Mode == timer.Work {
		return max(s.Timer.CyclesCompleted-1, 0)
	}
	return s.Timer.CyclesCompleted
}

func (s Session) TimerBar() string {
	total := s.Timer.PhaseSeconds
	remaining := s.Timer.RemainingSeconds
	if total <= 0 || remaining <= 0 {
		return strings.Repeat(timerBarEmptyChar, timerBarLength)
	}
	percentage := float64(remaining) / float64(total)
	filled := min(int(math.Round(percentage*timerBarLength)), timerBarLength)
	return strings.Repeat(timerBarFilledChar, filled) + strings.Repeat(timerBarEmptyChar, timerBarLength-filled)
}

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d / time.Minute)
	sec := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", m, sec)
}

func SessionMessageComponents(s Session) []discordgo.MessageComponent {
	if s.Ended {
		return []discordgo.MessageComponent{
			getEndMessage(s),
		}
	}

	// action row
	toggle := discordgo.Button{
		Label: "Stop",
		Style: discordgo.SecondaryButton,
		CustomID: InteractionID{
			Type:   stopInteraction,
			UserID: s.UserID,
		}.ToCustomID(),
	}
	if !s.Timer.IsRunning {
		toggle.Label = "Start"
		toggle.Style = discordgo.SuccessButton
		toggle.CustomID = InteractionID{
			Type:   startInteraction,
			UserID: s.UserID,
		}.ToCustomID()
	}
	skipButton := discordgo.Button{
		Label: "Skip",
		Style: discordgo.PrimaryButton,
		CustomID: InteractionID{
			Type:   skipInteraction,
			UserID: s.UserID,
		}.ToCustomID(),
	}
	endButton := discordgo.Button{
		Label: "End",
		Style: discordgo.DangerButton,
		CustomID: InteractionID{
			Type:   endInteraction,
			UserID: s.UserID,
		}.ToCustomID(),
	}
	actionRow := discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{toggle, skipButton, endButton},
	}

	// timer
	textParts := []string{
		"### " + s.Timer.Mode.String(),
		fmt.Sprintf("%s `%s`", s.TimerBar(), formatRemaining(s.Timer.Remaining())),
		fmt.Sprintf("Pomodoro: %d | %d", s.Cycle(), s.Settings.CyclesBeforeLongBreak),
	}
	if s.TaskTitle != "" {
		textParts = append(textParts, "Task: **"+s.TaskTitle+"**")
	}
	if s.PendingSettings != nil {
		textParts = append(textParts, "-# new settings apply on next reset")
	}

	accentColor := ColorGreen
	switch {
	case !s.Settings.Ready():
		accentColor = ColorRed
	case !s.Timer.IsRunning:
		accentColor = ColorLightGrey
	case s.Timer.Mode == timer.ShortBreak:
		accentColor = ColorBlue
	case s.Timer.Mode == timer.LongBreak:
		accentColor = ColorPurple
	}
	timerContainer := discordgo.Container{
		Components: []discordgo.MessageComponent{
			TextDisplay(strings.Join(textParts, "\n")),
		},
		AccentColor: accentColor.ToInt(),
	}

	return []discordgo.MessageComponent{
		getStartMessage(s),
		timerContainer,
		actionRow,
	}
}

func SettingsComponents(settings timer.Settings, pending bool) []discordgo.MessageComponent {
	textParts := []string{
		"### Timer Settings",
		fmt.Sprintf("%s: %d min", timer.Work, settings.WorkMinutes),
		fmt.Sprintf("%s: %d min", timer.ShortBreak, settings.ShortBreakMinutes),
		fmt.Sprintf("%s: %d min", timer.LongBreak, settings.LongBreakMinutes),
		fmt.Sprintf("Long break every %d pomodoros", settings.CyclesBeforeLongBreak),
	}
	if pending {
		textParts = append(textParts, "-# applied on next reset")
	}
	return []discordgo.MessageComponent{
		discordgo.Container{
			Components: []discordgo.MessageComponent{
				TextDisplay(strings.Join(textParts, "\n")),
			},
			AccentColor: ColorBlurple.ToInt(),
		},
	}
}

func TaskListComponents(tasks []pomotodo.ExistingTaskRecord, selected string) []discordgo.MessageComponent {
	if len(tasks) == 0 {
		return []discordgo.MessageComponent{
			TextDisplay("No open tasks. Add one with `/task add`."),
		}
	}
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "### Tasks")
	for _, t := range tasks {
		marker := "-"
		if string(t.ID) == selected {
			marker = "▶"
		}
		lines = append(lines, fmt.Sprintf("%s **%s** `%s` (%s focused)", marker, t.Title, t.ID, t.Focused().Round(time.Minute)))
	}
	return []discordgo.MessageComponent{
		TextDisplay(strings.Join(lines, "\n")),
	}
}

func getStartMessage(s Session) discordgo.MessageComponent {
	return TextDisplay(fmt.Sprintf("<@%s> it's productivity o'clock!", s.UserID))
}

func getEndMessage(s Session) discordgo.MessageComponent {
	return TextDisplay(fmt.Sprintf("Good stuff! %d pomodoros this session.", s.PomodorosDone()))
}
