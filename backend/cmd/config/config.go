package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config carries everything the process needs at startup. Values come from
// flags first, then VIORA_* environment variables, then defaults.
type Config struct {
	APIListenAddr string
	WSListenAddr  string
	LogLevel      string
	JWTSecret     string // empty disables the websocket token gate
}

func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("api-listen-addr", ":8080")
	v.SetDefault("ws-listen-addr", ":8888")
	v.SetDefault("log-level", "debug")
	v.SetDefault("jwt-secret", "")

	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix("viora")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return Config{
		APIListenAddr: v.GetString("api-listen-addr"),
		WSListenAddr:  v.GetString("ws-listen-addr"),
		LogLevel:      v.GetString("log-level"),
		JWTSecret:     v.GetString("jwt-secret"),
	}, nil
}
