package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBPath       string
	GinMode      string
	ServerAddr   string
	OpenAIAPIKey string
	OpenAIModel  string
	ServerURL    string
	StoreTimeout time.Duration
}

var defaults = map[string]any{
	"DB_DRIVER":        "mysql",
	"DB_HOST":          "localhost",
	"DB_PORT":          "3306",
	"DB_USER":          "taskuser",
	"DB_PASSWORD":      "taskpassword",
	"DB_NAME":          "task_board",
	"DB_PATH":          "task_board.db",
	"GIN_MODE":         "debug",
	"SERVER_ADDR":      ":8080",
	"OPENAI_API_KEY":   "",
	"OPENAI_MODEL":     "",
	"BOARD_SERVER_URL": "http://localhost:8080",
	"STORE_TIMEOUT":    "10s",
}

// Load reads the environment, falling back to the file named by BOARD_CONFIG
// and then to built-in defaults. Empty variables count as unset.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := v.GetString("BOARD_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	timeout := v.GetDuration("STORE_TIMEOUT")
	if timeout <= 0 {
		return nil, fmt.Errorf("invalid STORE_TIMEOUT %q", v.GetString("STORE_TIMEOUT"))
	}

	return &Config{
		DBDriver:     v.GetString("DB_DRIVER"),
		DBHost:       v.GetString("DB_HOST"),
		DBPort:       v.GetString("DB_PORT"),
		DBUser:       v.GetString("DB_USER"),
		DBPassword:   v.GetString("DB_PASSWORD"),
		DBName:       v.GetString("DB_NAME"),
		DBPath:       v.GetString("DB_PATH"),
		GinMode:      v.GetString("GIN_MODE"),
		ServerAddr:   v.GetString("SERVER_ADDR"),
		OpenAIAPIKey: v.GetString("OPENAI_API_KEY"),
		OpenAIModel:  v.GetString("OPENAI_MODEL"),
		ServerURL:    v.GetString("BOARD_SERVER_URL"),
		StoreTimeout: timeout,
	}, nil
}
