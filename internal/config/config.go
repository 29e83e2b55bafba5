package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	PublicURL  string  `yaml:"public-url" env:"PUBLIC_URL" env-default:"http://localhost:8080"`
	Session    Session `yaml:"session"`
}

type Session struct {
	// A TTL of zero keeps abandoned sessions forever; anything else lets
	// the reaper delete sessions idle longer than this.
	TTLSeconds          int `yaml:"ttl-seconds" env:"SESSION_TTL_SECONDS" env-default:"0"`
	ReapIntervalSeconds int `yaml:"reap-interval-seconds" env:"SESSION_REAP_INTERVAL_SECONDS" env-default:"60"`
	WinsPerStreak       int `yaml:"wins-per-streak" env:"SESSION_WINS_PER_STREAK" env-default:"3"`
}

func (that *Session) TTL() time.Duration {
	return time.Duration(that.TTLSeconds) * time.Second
}

func (that *Session) ReapInterval() time.Duration {
	return time.Duration(that.ReapIntervalSeconds) * time.Second
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}
