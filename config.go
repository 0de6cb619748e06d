package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ARTILLERY"

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	ClientDir string `mapstructure:"clientDir"`
	LevelsDir string `mapstructure:"levelsDir"`
	PublicURL string `mapstructure:"publicURL"` // base for invite links; empty uses the request host
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// GameConfig holds the defaults applied to every new room
type GameConfig struct {
	TurnBased  bool    `mapstructure:"turnBased"`
	Gravity    float64 `mapstructure:"gravity"`
	Dt         float64 `mapstructure:"dt"`
	Substeps   int     `mapstructure:"substeps"`
	AIAccuracy float64 `mapstructure:"aiAccuracy"`
	MaxRooms   int     `mapstructure:"maxRooms"`
	Seed       int64   `mapstructure:"seed"`
}

// DBConfig holds the match log location. An empty path disables it.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// NATSConfig holds the snapshot mirror settings. An empty URL disables it
// unless Embedded starts a local server.
type NATSConfig struct {
	URL      string `mapstructure:"url"`
	Bucket   string `mapstructure:"bucket"`
	Embedded bool   `mapstructure:"embedded"`
	StoreDir string `mapstructure:"storeDir"`
}

// Config is the process configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Game   GameConfig   `mapstructure:"game"`
	DB     DBConfig     `mapstructure:"db"`
	NATS   NATSConfig   `mapstructure:"nats"`
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.clientDir", "../client")
	viper.SetDefault("server.levelsDir", "levels")
	viper.SetDefault("server.publicURL", "")

	viper.SetDefault("log.level", "info")

	viper.SetDefault("game.turnBased", true)
	viper.SetDefault("game.gravity", DefaultGravity)
	viper.SetDefault("game.dt", DefaultDt)
	viper.SetDefault("game.substeps", DefaultSubsteps)
	viper.SetDefault("game.aiAccuracy", DefaultAccuracy)
	viper.SetDefault("game.maxRooms", maxRooms)
	viper.SetDefault("game.seed", 0)

	viper.SetDefault("db.path", "artillery.db")

	viper.SetDefault("nats.url", "")
	viper.SetDefault("nats.bucket", "artillery-rooms")
	viper.SetDefault("nats.embedded", false)
	viper.SetDefault("nats.storeDir", "nats-data")
}

// BindFlags registers the command line flags and binds them to their keys
func BindFlags(fs *pflag.FlagSet) error {
	fs.String("config", "", "Path to a config file (yaml, json or toml)")
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("client", "../client", "Path to client directory")
	fs.String("levels", "levels", "Path to level files")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.String("db", "artillery.db", "SQLite match log path (empty disables)")
	fs.String("nats-url", "", "NATS server for the room snapshot mirror (empty disables)")
	fs.Bool("nats-embedded", false, "Run an in-process NATS server for the snapshot mirror")

	for key, flag := range map[string]string{
		"server.addr":      "addr",
		"server.clientDir": "client",
		"server.levelsDir": "levels",
		"log.level":        "log-level",
		"db.path":          "db",
		"nats.url":         "nats-url",
		"nats.embedded":    "nats-embedded",
	} {
		if err := viper.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

// LoadConfig merges defaults, an optional config file, ARTILLERY_* environment
// variables and bound flags.
func LoadConfig(configFile string) (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// World converts the game settings into a world config
func (c GameConfig) World() WorldConfig {
	return WorldConfig{
		Gravity:    c.Gravity,
		Dt:         c.Dt,
		Substeps:   c.Substeps,
		TurnBased:  c.TurnBased,
		AIAccuracy: c.AIAccuracy,
		Seed:       c.Seed,
	}
}
