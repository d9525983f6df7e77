package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/benjamonnguyen/pomotodo"
	"github.com/benjamonnguyen/pomotodo/discordgo"
	"github.com/benjamonnguyen/pomotodo/sqlite"
	"github.com/benjamonnguyen/pomotodo/timer"
	dg "github.com/bwmarrin/discordgo"
	"github.com/charmbracelet/log"
)

const (
	RepoURL = "https://github.com/benjamonnguyen/pomotodo"
	Version = "0.1.0"
)

var isProd = flag.Bool("p", false, "load .env instead of .env.dev")

func main() {
	flag.Parse()

	// logger
	log.SetLevel(log.DebugLevel)
	if *isProd {
		log.SetLevel(log.InfoLevel)
	}
	log.SetReportCaller(true)
	topCtx, topCtxC := context.WithCancel(context.Background())
	initTimeout, initTimeoutC := context.WithTimeout(topCtx, 10*time.Second)

	// config
	cfg, err := pomotodo.LoadConfig(*isProd)
	if err != nil {
		log.Fatal(err)
	}
	defaultSettings, err := pomotodo.LoadSettingsFile(cfg.SettingsPath)
	if err != nil {
		log.Fatal("failed settings load", "path", cfg.SettingsPath, "err", err)
	}
	log.Info("loaded default settings", "settings", defaultSettings)

	// db
	log.Info("opening db", "url", cfg.DatabaseURL)
	db, err := sqlite.Open(initTimeout, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed database open", "err", err)
	}
	defer db.Close() //nolint
	if err := sqlite.RunMigrations(db); err != nil {
		log.Fatal("failed migration", "err", err)
	}

	tx, dbGetter := txStdLib.NewTransactor(
		db,
		txStdLib.NestedTransactionsSavepoints,
	)

	taskRepo := sqlite.NewTaskRepo(dbGetter, *log.Default())
	settingsRepo := sqlite.NewSettingsRepo(dbGetter, *log.Default())
	settingsSvc := NewSettingsService(settingsRepo, defaultSettings, *log.Default())
	taskSvc := NewTaskService(taskRepo, tx)
	store := NewTaskStore(topCtx, taskRepo, *log.Default())

	// set up discord cl
	cl, err := dg.New("Bot " + cfg.BotToken)
	if err != nil {
		log.Fatal(err)
	}
	cl.ShouldRetryOnRateLimit = false
	cl.Client = &http.Client{Timeout: (20 * time.Second)}
	cl.UserAgent = fmt.Sprintf("%s (%s, v%s)", cfg.BotName, RepoURL, Version)
	cl.ShouldReconnectVoiceOnSessionError = true

	dm := NewDiscordMessenger(cl)
	discordAdapter := discordgo.NewDiscordAdapter(cl, *log.Default())
	opusAudioLoader, err := loadOpusAudio(map[timer.Mode]string{
		timer.Work:       cfg.WorkSoundPath,
		timer.ShortBreak: cfg.ShortBreakSoundPath,
		timer.LongBreak:  cfg.LongBreakSoundPath,
	})
	if err != nil {
		log.Fatal("failed audio load", "err", err)
	}
	alerter := NewAlerter(dm, discordAdapter, opusAudioLoader.Load, *log.Default())

	// session manager
	sessionManager := NewSessionManager(topCtx, taskRepo, settingsSvc, store)
	sessionManager.OnSessionUpdate(func(ctx context.Context, s Session) {
		_, err := dm.EditChannelMessage(s.ChannelID, s.MessageID, SessionMessageComponents(s)...)
		if err != nil {
			log.Error("failed to edit discord channel message", "channelID", s.ChannelID, "messageID", s.MessageID, "userID", s.UserID, "err", err)
		}
		if s.Ended && s.GuildID != "" {
			if err := cl.ChannelMessageUnpin(s.ChannelID, s.MessageID); err != nil {
				log.Error("failed to unpin discord channel message", "channelID", s.ChannelID, "messageID", s.MessageID, "userID", s.UserID, "err", err)
			}
		}
	})
	sessionManager.OnModeTransition(alerter.Alert)

	// discord event hooks
	cl.AddHandler(func(s *dg.Session, m *dg.InteractionCreate) {
		_ = StartTimer(topCtx, sessionManager, dm, s, m) ||
			TimerButton(topCtx, sessionManager, dm, s, m) ||
			UpdateSettings(topCtx, sessionManager, settingsSvc, dm, s, m) ||
			ManageTasks(topCtx, sessionManager, taskSvc, dm, s, m) ||
			TimerCommand(topCtx, sessionManager, dm, s, m)
	})

	// open connection
	if err := cl.Open(); err != nil {
		log.Fatal("Error opening connection", "err", err)
	}
	log.Info(cfg.BotName + " running. Press CTRL-C to exit.")

	// status api
	var srv *http.Server
	if cfg.HTTPAddr != "" {
		srv = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           NewStatusRouter(sessionManager, taskSvc),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("serving status api", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("status api stopped", "err", err)
			}
		}()
	}

	// init done
	initTimeoutC()

	// graceful shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	log.Info("terminating " + cfg.BotName)
	topCtxC()
	shutdownTimeout, shutdownTimeoutC := context.WithTimeout(context.Background(), time.Minute)
	go func() {
		// to ensure proper shutdown ordering...
		if srv != nil {
			if err := srv.Shutdown(shutdownTimeout); err != nil {
				log.Error(err)
			}
		}
		if err := sessionManager.Shutdown(); err != nil {
			log.Error(err)
		}
		store.Wait()
		discordAdapter.Close()
		if err := cl.Close(); err != nil {
			log.Error(err)
		}
		shutdownTimeoutC()
	}()
	<-shutdownTimeout.Done()
	if !errors.Is(shutdownTimeout.Err(), context.Canceled) {
		log.Error("failed to shut down gracefully", "err", shutdownTimeout.Err())
	}
}
