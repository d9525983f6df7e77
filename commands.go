package pomotodo

import (
	"github.com/bwmarrin/discordgo"
)

const (
	WorkOption       = "work"
	ShortBreakOption = "short_break"
	LongBreakOption  = "long_break"
	CyclesOption     = "cycles"
	ModeOption       = "mode"
	TitleOption      = "title"
	TaskOption       = "task"

	TaskAddSubcommand    = "add"
	TaskListSubcommand   = "list"
	TaskSelectSubcommand = "select"
	TaskDeleteSubcommand = "delete"
)

func float64Ptr(f float64) *float64 {
	return &f
}

func simpleCommand(name, description string) discordgo.ApplicationCommand {
	return discordgo.ApplicationCommand{
		Name:        name,
		Description: description,
	}
}

var (
	StartCommand    = simpleCommand("start", "start or resume your pomodoro timer")
	StopCommand     = simpleCommand("stop", "pause your pomodoro timer")
	ResetCommand    = simpleCommand("reset", "reset your timer to the first pomodoro")
	SkipCommand     = simpleCommand("skip", "skip to the next interval")
	CompleteCommand = simpleCommand("complete", "mark the selected task complete and reset the timer")
	EndCommand      = simpleCommand("end", "end your pomodoro session")
)

var SettingsCommand = discordgo.ApplicationCommand{
	Name:        "settings",
	Description: "change timer settings - applied on next reset",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        WorkOption,
			Description: "pomodoro duration in minutes (Default: 25)",
			MinValue:    float64Ptr(1),
			MaxValue:    maxMinutes,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        ShortBreakOption,
			Description: "short break duration in minutes (Default: 5)",
			MinValue:    float64Ptr(1),
			MaxValue:    maxMinutes,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        LongBreakOption,
			Description: "long break duration in minutes (Default: 15)",
			MinValue:    float64Ptr(1),
			MaxValue:    maxMinutes,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        CyclesOption,
			Description: "number of pomodoros between long breaks (Default: 4)",
			MinValue:    float64Ptr(1),
			MaxValue:    maxCycles,
		},
	},
}

var ModeCommand = discordgo.ApplicationCommand{
	Name:        "mode",
	Description: "switch interval while the timer is stopped",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        ModeOption,
			Description: "interval to switch to",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Pomodoro", Value: "work"},
				{Name: "Short Break", Value: "short_break"},
				{Name: "Long Break", Value: "long_break"},
			},
		},
	},
}

var TaskCommand = discordgo.ApplicationCommand{
	Name:        "task",
	Description: "manage your todo list",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        TaskAddSubcommand,
			Description: "add a task",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        TitleOption,
					Description: "what needs doing",
					Required:    true,
					MaxLength:   200,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        TaskListSubcommand,
			Description: "list open tasks",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        TaskSelectSubcommand,
			Description: "track focus time against a task",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        TaskOption,
					Description: "task ID from /task list",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        TaskDeleteSubcommand,
			Description: "delete a task",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        TaskOption,
					Description: "task ID from /task list",
					Required:    true,
				},
			},
		},
	},
}

func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		&StartCommand,
		&StopCommand,
		&ResetCommand,
		&SkipCommand,
		&CompleteCommand,
		&EndCommand,
		&SettingsCommand,
		&ModeCommand,
		&TaskCommand,
	}
}
