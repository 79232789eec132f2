package env_mode

import (
	"os"
	"strings"
	"sync"
)

const ENV_MODE_KEY = "GO_ENV_MODE"

type ENV_MODE string

const (
	DevMode  ENV_MODE = "development"
	ProMode  ENV_MODE = "production"
	TestMode ENV_MODE = "test"
)

var (
	currentEnv ENV_MODE
	modeMu     sync.RWMutex
)

func ParseEnv(env string) ENV_MODE {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

// Aliases returns the short names that select mode specific config files.
func Aliases(mode ENV_MODE) []string {
	switch mode {
	case DevMode:
		return []string{"dev"}
	case ProMode:
		return []string{"pro", "prod"}
	default:
		return nil
	}
}

// Mode returns the mode set with SetMode, else the one named by GO_ENV_MODE.
func Mode() ENV_MODE {
	modeMu.RLock()
	defer modeMu.RUnlock()
	if currentEnv != "" {
		return currentEnv
	}
	return ParseEnv(os.Getenv(ENV_MODE_KEY))
}

func SetMode(mode ENV_MODE) {
	modeMu.Lock()
	defer modeMu.Unlock()
	currentEnv = mode
}
