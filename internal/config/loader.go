package config

import (
	"fmt"

	"github.com/rpattn/fleetledger/internal/db"
	"github.com/rpattn/fleetledger/internal/importer"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	DB     db.Config
	Addr   string
	Import importer.SessionConfig
}

// DefaultImportConfig returns the import session defaults used when
// config.yaml does not override them. The provider list and alias
// table are plain data so new platforms and header languages are a
// config change, not a code change.
func DefaultImportConfig() importer.SessionConfig {
	return importer.SessionConfig{
		DateOrder:     importer.DayFirst,
		ProgressEvery: 25,
		Parallelism:   4,
		Providers: []importer.Provider{
			{Name: "uber", Aliases: []string{"uber earnings"}},
			{Name: "careem", Aliases: []string{"careem earnings"}},
			{Name: "yango", Aliases: []string{"yango earnings"}},
			{Name: "bolt", Aliases: []string{"bolt earnings"}},
		},
	}
}

// Load reads config.yaml plus environment overrides.
func Load(configPath string) (Config, error) {
	cfg := Config{
		DB:     db.DefaultConfig(),
		Addr:   ":8080",
		Import: DefaultImportConfig(),
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()     // allow environment overrides
	v.SetEnvPrefix("DB") // map env vars like DB_HOST, DB_PORT

	// Optional: Map nested keys to flat env vars
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		logrus.Info("no config.yaml found, using defaults and env vars")
	} else {
		logrus.Info("loaded config.yaml")
	}

	// Override defaults if values exist
	if v.IsSet("database.host") {
		cfg.DB.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.DB.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.DB.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.DB.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DB.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.DB.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("server.addr") {
		cfg.Addr = v.GetString("server.addr")
	}

	if v.IsSet("import.date_order") {
		order, err := importer.ParseDateOrder(v.GetString("import.date_order"))
		if err != nil {
			return cfg, fmt.Errorf("invalid import.date_order: %w", err)
		}
		cfg.Import.DateOrder = order
	}
	if v.IsSet("import.progress_every") {
		cfg.Import.ProgressEvery = v.GetInt("import.progress_every")
	}
	if v.IsSet("import.parallelism") {
		cfg.Import.Parallelism = v.GetInt("import.parallelism")
	}
	if v.IsSet("import.providers") {
		var providers []importer.Provider
		if err := v.UnmarshalKey("import.providers", &providers); err != nil {
			return cfg, fmt.Errorf("invalid import.providers: %w", err)
		}
		cfg.Import.Providers = providers
	}
	if v.IsSet("import.header_aliases") {
		aliases := make(map[string][]string)
		if err := v.UnmarshalKey("import.header_aliases", &aliases); err != nil {
			return cfg, fmt.Errorf("invalid import.header_aliases: %w", err)
		}
		cfg.Import.HeaderAliases = aliases
	}

	return cfg, nil
}
