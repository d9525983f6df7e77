package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/timer"
	"github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
)

const (
	defaultErrorMsg = "Looks like something went wrong. Try again in a bit or reach out to support."
)

// userMessage translates errors a user can act on. Anything else gets defaultErrorMsg.
func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoSession):
		return "You don't have a timer yet. Use `/start` to begin."
	case errors.Is(err, timer.ErrNotConfigured):
		return "Your timer settings are incomplete. Fix them with `/settings`."
	case errors.Is(err, timer.ErrRunning):
		return "Stop the timer before switching modes."
	case errors.Is(err, timer.ErrInvalidMode):
		return "That's not a timer mode."
	case errors.Is(err, ErrTaskNotFound):
		return "Couldn't find that task. Check `/task list`."
	case errors.Is(err, ErrTaskComplete):
		return "That task is already complete."
	case errors.Is(err, pomotodo.ErrInvalidSettings):
		return err.Error()
	default:
		return defaultErrorMsg
	}
}

func respondError(dm DiscordMessenger, m *discordgo.InteractionCreate, err error) {
	if err := dm.RespondEphemeral(m.Interaction, TextDisplay(userMessage(err))); err != nil {
		log.Error(err)
	}
}

func respondText(dm DiscordMessenger, m *discordgo.InteractionCreate, content string) {
	if err := dm.RespondEphemeral(m.Interaction, TextDisplay(content)); err != nil {
		log.Error(err)
	}
}

func isCommand(m *discordgo.InteractionCreate, cmd discordgo.ApplicationCommand) bool {
	return m.Type == discordgo.InteractionApplicationCommand && m.ApplicationCommandData().Name == cmd.Name
}

func StartTimer(ctx context.Context, sessionManager SessionManager, dm DiscordMessenger, s *discordgo.Session, m *discordgo.InteractionCreate) bool {
	if !isCommand(m, pomotodo.StartCommand) {
		return false
	}
	user := GetUser(m.Interaction)

	var previous Session
	if sessionManager.HasSession(pomotodo.OwnerID(user.ID)) {
		previous, _ = sessionManager.GetSession(pomotodo.OwnerID(user.ID))
	}

	session, err := sessionManager.StartSession(ctx, startSessionRequest{
		userID:    pomotodo.OwnerID(user.ID),
		guildID:   m.GuildID,
		channelID: m.ChannelID,
	})
	if err != nil && !errors.Is(err, timer.ErrNotConfigured) {
		log.Error("failed to start session", "userID", user.ID, "err", err)
		respondError(dm, m, err)
		return true
	}

	components := SessionMessageComponents(session)
	if err != nil {
		components = append(components, TextDisplay(userMessage(err)))
	}
	msg, respErr := dm.Respond(m.Interaction, true, components...)
	if respErr != nil {
		log.Error(respErr)
		return true
	}
	if _, err := sessionManager.SetMessage(pomotodo.OwnerID(user.ID), m.ChannelID, msg.ID); err != nil {
		log.Error("failed to set session message", "userID", user.ID, "err", err)
		return true
	}
	log.Info("started timer", "userID", user.ID, "channelID", m.ChannelID)

	// the newest message owns the session
	if previous.MessageID != "" && previous.MessageID != msg.ID {
		if _, err := dm.EditChannelMessage(previous.ChannelID, previous.MessageID, TextDisplay(fmt.Sprintf("Timer moved to <#%s>.", m.ChannelID))); err != nil {
			log.Debug("failed to edit previous session message", "messageID", previous.MessageID, "err", err)
		}
		if previous.GuildID != "" {
			_ = s.ChannelMessageUnpin(previous.ChannelID, previous.MessageID)
		}
	}
	if m.GuildID != "" {
		if err := s.ChannelMessagePin(m.ChannelID, msg.ID); err != nil {
			log.Error("failed to pin message", "err", err)
		}
	}
	return true
}

// TimerCommand handles the slash commands that act on an existing session.
func TimerCommand(ctx context.Context, sessionManager SessionManager, dm DiscordMessenger, s *discordgo.Session, m *discordgo.InteractionCreate) bool {
	if m.Type != discordgo.InteractionApplicationCommand {
		return false
	}
	data := m.ApplicationCommandData()
	owner := pomotodo.OwnerID(GetUser(m.Interaction).ID)

	var (
		session Session
		err     error
		reply   string
	)
	switch data.Name {
	case pomotodo.StopCommand.Name:
		session, err = sessionManager.Stop(owner)
		reply = "Timer stopped."
	case pomotodo.ResetCommand.Name:
		session, err = sessionManager.Reset(owner)
		reply = "Timer reset."
	case pomotodo.SkipCommand.Name:
		session, err = sessionManager.Skip(owner)
	case pomotodo.CompleteCommand.Name:
		var before Session
		if before, err = sessionManager.GetSession(owner); err == nil {
			session, err = sessionManager.Complete(owner)
			reply = fmt.Sprintf("Completed **%s**. Timer reset.", before.TaskTitle)
		}
	case pomotodo.EndCommand.Name:
		session, err = sessionManager.EndSession(ctx, owner)
		reply = "Session ended."
	case pomotodo.ModeCommand.Name:
		var mode timer.Mode
		if len(data.Options) > 0 {
			mode, err = timer.ParseMode(data.Options[0].StringValue())
		} else {
			err = timer.ErrInvalidMode
		}
		if err == nil {
			session, err = sessionManager.ChangeMode(owner, mode)
			reply = "Switched to " + mode.String() + "."
		}
	default:
		return false
	}
	if err != nil {
		log.Debug("timer command failed", "command", data.Name, "userID", owner, "err", err)
		respondError(dm, m, err)
		return true
	}
	if data.Name == pomotodo.SkipCommand.Name {
		reply = "Skipped to " + session.Timer.Mode.String() + "."
	}

	respondText(dm, m, reply)
	return true
}

func TimerButton(ctx context.Context, sessionManager SessionManager, dm DiscordMessenger, s *discordgo.Session, m *discordgo.InteractionCreate) bool {
	if m.Type != discordgo.InteractionMessageComponent {
		return false
	}

	data := m.MessageComponentData()
	id, err := FromCustomID(data.CustomID)
	if err != nil {
		return false
	}
	switch id.Type {
	case startInteraction, stopInteraction, skipInteraction, endInteraction:
	default:
		return false
	}

	if user := GetUser(m.Interaction); user == nil || pomotodo.OwnerID(user.ID) != id.UserID {
		respondText(dm, m, "This isn't your timer. Start your own with `/start`.")
		return true
	}

	followup, err := dm.DeferMessageUpdate(m.Interaction)
	if err != nil {
		log.Error(err)
		return true
	}

	var session Session
	switch id.Type {
	case startInteraction:
		session, err = sessionManager.StartSession(ctx, startSessionRequest{
			userID:    id.UserID,
			guildID:   m.GuildID,
			channelID: m.ChannelID,
		})
	case stopInteraction:
		session, err = sessionManager.Stop(id.UserID)
	case skipInteraction:
		session, err = sessionManager.Skip(id.UserID)
	case endInteraction:
		// messaging handled in OnSessionUpdate hook
		if _, err := sessionManager.EndSession(ctx, id.UserID); err != nil {
			log.Error("failed to end session", "userID", id.UserID, "err", err)
		}
		return true
	}
	if err != nil {
		log.Error("failed button interaction", "type", id.Type, "userID", id.UserID, "err", err)
		errText := TextDisplay(userMessage(err))
		if errors.Is(err, ErrNoSession) {
			if _, err := followup(errText); err != nil {
				log.Error(err)
			}
			return true
		}
		if _, err := followup(append(SessionMessageComponents(session), errText)...); err != nil {
			log.Error(err)
		}
		return true
	}
	log.Info("handled button interaction", "type", id.Type, "userID", id.UserID, "mode", session.Timer.Mode)

	if _, err := followup(SessionMessageComponents(session)...); err != nil {
		log.Error(err)
	}
	return true
}

func UpdateSettings(ctx context.Context, sessionManager SessionManager, settingsSvc SettingsService, dm DiscordMessenger, s *discordgo.Session, m *discordgo.InteractionCreate) bool {
	if !isCommand(m, pomotodo.SettingsCommand) {
		return false
	}
	data := m.ApplicationCommandData()
	owner := pomotodo.OwnerID(GetUser(m.Interaction).ID)

	raw := make(map[string]any, len(data.Options))
	for _, opt := range data.Options {
		raw[opt.Name] = opt.Value
	}

	var (
		settings timer.Settings
		err      error
	)
	if len(raw) == 0 {
		settings, err = settingsSvc.Get(ctx, owner)
	} else {
		settings, err = settingsSvc.Update(ctx, owner, raw)
	}
	if err != nil {
		log.Debug("failed settings command", "userID", owner, "err", err)
		respondError(dm, m, err)
		return true
	}

	pending := false
	if sessionManager.HasSession(owner) {
		session, err := sessionManager.QueueSettings(owner, settings)
		if err != nil && !errors.Is(err, ErrNoSession) {
			log.Error("failed to queue settings", "userID", owner, "err", err)
		}
		pending = session.PendingSettings != nil
	}

	if err := dm.RespondEphemeral(m.Interaction, SettingsComponents(settings, pending)...); err != nil {
		log.Error(err)
	}
	return true
}

func ManageTasks(ctx context.Context, sessionManager SessionManager, taskSvc TaskService, dm DiscordMessenger, s *discordgo.Session, m *discordgo.InteractionCreate) bool {
	if !isCommand(m, pomotodo.TaskCommand) {
		return false
	}
	data := m.ApplicationCommandData()
	if len(data.Options) == 0 {
		return false
	}
	sub := data.Options[0]
	owner := pomotodo.OwnerID(GetUser(m.Interaction).ID)
	optionValue := func(name string) string {
		for _, opt := range sub.Options {
			if opt.Name == name {
				return opt.StringValue()
			}
		}
		return ""
	}

	switch sub.Name {
	case pomotodo.TaskAddSubcommand:
		task, err := taskSvc.Add(ctx, owner, optionValue(pomotodo.TitleOption))
		if err != nil {
			log.Error("failed to add task", "userID", owner, "err", err)
			respondError(dm, m, err)
			return true
		}
		respondText(dm, m, fmt.Sprintf("Added **%s** `%s`", task.Title, task.ID))

	case pomotodo.TaskListSubcommand:
		tasks, err := taskSvc.List(ctx, owner)
		if err != nil {
			log.Error("failed to list tasks", "userID", owner, "err", err)
			respondError(dm, m, err)
			return true
		}
		var selected string
		if session, err := sessionManager.GetSession(owner); err == nil {
			selected = session.Timer.TaskID
		}
		if err := dm.RespondEphemeral(m.Interaction, TaskListComponents(tasks, selected)...); err != nil {
			log.Error(err)
		}

	case pomotodo.TaskSelectSubcommand:
		session, err := sessionManager.SelectTask(ctx, owner, pomotodo.TaskID(optionValue(pomotodo.TaskOption)))
		if err != nil {
			log.Debug("failed to select task", "userID", owner, "err", err)
			respondError(dm, m, err)
			return true
		}
		respondText(dm, m, fmt.Sprintf("Tracking focus time on **%s**", session.TaskTitle))

	case pomotodo.TaskDeleteSubcommand:
		id := pomotodo.TaskID(optionValue(pomotodo.TaskOption))
		task, err := deleteTask(ctx, sessionManager, taskSvc, owner, id)
		if err != nil {
			log.Debug("failed to delete task", "userID", owner, "taskID", id, "err", err)
			respondError(dm, m, err)
			return true
		}
		respondText(dm, m, fmt.Sprintf("Deleted **%s**", task.Title))

	default:
		return false
	}
	return true
}

// deleteTask deselects the task only once the delete went through.
func deleteTask(ctx context.Context, sessionManager SessionManager, taskSvc TaskService, owner pomotodo.OwnerID, id pomotodo.TaskID) (pomotodo.ExistingTaskRecord, error) {
	task, err := taskSvc.Delete(ctx, owner, id)
	if err != nil {
		return pomotodo.ExistingTaskRecord{}, err
	}
	if session, err := sessionManager.GetSession(owner); err == nil && session.Timer.TaskID == string(id) {
		if _, err := sessionManager.SelectTask(ctx, owner, ""); err != nil {
			log.Error("failed to deselect task", "userID", owner, "err", err)
		}
	}
	return task, nil
}
