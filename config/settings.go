package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Settings holds the runtime configuration of the portal. It is read from a
// TOML file once at startup; the JWT secret may additionally be overridden
// through PORTAL_JWT_SECRET so it never has to live in the file.
type Settings struct {
	Listen      string   `toml:"listen"`
	Port        int      `toml:"port"`
	JWTSecret   string   `toml:"jwtSecret"`
	TokenTTLMin int      `toml:"tokenTTLMinutes"`
	CORSOrigins []string `toml:"corsOrigins"`
}

func defaultSettings() Settings {
	return Settings{
		Listen:      "",
		Port:        8080,
		TokenTTLMin: 60,
		CORSOrigins: []string{"http://localhost:3000"},
	}
}

// LoadSettings reads the settings file at GetSettingsPath. A missing file is
// not an error: defaults apply, so a bare checkout can still start.
func LoadSettings() (Settings, error) {
	settings := defaultSettings()

	data, err := os.ReadFile(GetSettingsPath())
	if err == nil {
		if err := toml.Unmarshal(data, &settings); err != nil {
			return settings, err
		}
	} else if !os.IsNotExist(err) {
		return settings, err
	}

	if secret := os.Getenv("PORTAL_JWT_SECRET"); secret != "" {
		settings.JWTSecret = secret
	}
	return settings, nil
}

func (s Settings) TokenTTL() time.Duration {
	return time.Duration(s.TokenTTLMin) * time.Minute
}
