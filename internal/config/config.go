package config

import (
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken  string `envconfig:"BOT_TOKEN" required:"true"`
	PublicURL string `envconfig:"PUBLIC_URL"`                          // base URL for webhook registration; empty disables registration
	Port      int    `envconfig:"PORT" default:"3000"`                 // listen port for webhook + healthz
	Admins    string `envconfig:"ADMINS"`                              // comma-separated Telegram user IDs
	DBPath    string `envconfig:"DB_PATH" default:"./data/iqtibos.db"` // sqlite database file
	Channel   string `envconfig:"CHANNEL"`                             // optional single mandatory-channel override (@handle)
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`            // debug|info|warn|error
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// AdminIDs parses the comma-separated ADMINS list. Malformed entries are skipped.
func (c Config) AdminIDs() []int64 {
	if strings.TrimSpace(c.Admins) == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(c.Admins, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
