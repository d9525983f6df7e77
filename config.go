package pomotodo

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	BotName      string
	BotToken     string
	SettingsPath string
	HTTPAddr     string

	WorkSoundPath       string
	ShortBreakSoundPath string
	LongBreakSoundPath  string
}

// LoadConfig reads .env (production) or .env.dev into the environment, then
// builds Config from POMOTODO_* variables.
func LoadConfig(isProd bool) (Config, error) {
	if isProd {
		_ = godotenv.Load(".env")
	} else {
		_ = godotenv.Load(".env.dev")
	}

	config := Config{
		DatabaseURL:         os.Getenv("POMOTODO_DB_PATH"),
		BotName:             os.Getenv("POMOTODO_BOT_NAME"),
		BotToken:            os.Getenv("POMOTODO_BOT_TOKEN"),
		SettingsPath:        os.Getenv("POMOTODO_SETTINGS_PATH"),
		HTTPAddr:            os.Getenv("POMOTODO_HTTP_ADDR"),
		WorkSoundPath:       os.Getenv("POMOTODO_WORK_SOUND_PATH"),
		ShortBreakSoundPath: os.Getenv("POMOTODO_SHORT_BREAK_SOUND_PATH"),
		LongBreakSoundPath:  os.Getenv("POMOTODO_LONG_BREAK_SOUND_PATH"),
	}

	if config.BotToken == "" {
		return Config{}, fmt.Errorf("required environment variable: POMOTODO_BOT_TOKEN")
	}

	if config.BotName == "" {
		config.BotName = "Pomotodo"
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = "pomotodo.db"
	}

	return config, nil
}
