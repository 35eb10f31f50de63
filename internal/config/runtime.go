package config

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Runtime struct {
	HTTPAddr          string
	CacheMaxItems     int
	ObsBuffer         int
	DefaultLocale     string
	ExtendedCountries []string
	LogLevel          string
	LogFormat         string
}

// Load reads the runtime settings from the environment. Numbers that do not
// parse or are below their minimum fall back to the default.
func Load() Runtime {
	return load(viper.New())
}

func load(v *viper.Viper) Runtime {
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("RULES_CACHE_MAX_ITEMS", 1024)
	v.SetDefault("OBS_BUFFER", 4096)
	v.SetDefault("DEFAULT_LOCALE", "en")
	v.SetDefault("EXTENDED_CLASSIFICATION_COUNTRIES", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	return Runtime{
		HTTPAddr:          v.GetString("HTTP_ADDR"),
		CacheMaxItems:     getInt(v, "RULES_CACHE_MAX_ITEMS", 1024, 1),
		ObsBuffer:         getInt(v, "OBS_BUFFER", 4096, 1),
		DefaultLocale:     v.GetString("DEFAULT_LOCALE"),
		ExtendedCountries: splitList(v.GetString("EXTENDED_CLASSIFICATION_COUNTRIES")),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFormat:         v.GetString("LOG_FORMAT"),
	}
}

func getInt(v *viper.Viper, key string, fallback, min int) int {
	n := v.GetInt(key)
	if n < min {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Logger builds the process logger: JSON by default, human readable when
// LOG_FORMAT=console. Unknown levels mean info.
func (r Runtime) Logger(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if r.LogFormat == "console" {
		w = zerolog.ConsoleWriter{Out: w}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(r.LogLevel))
	if err != nil || r.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
