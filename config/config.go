package config

import (
	_ "embed"
	"os"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("PORTAL_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("PORTAL_DEBUG") == "true"
}

func GetDataFolder() string {
	dataFolderPath := os.Getenv("PORTAL_DATA_FOLDER")
	if dataFolderPath == "" {
		dataFolderPath = "data"
	}
	return dataFolderPath
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("PORTAL_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "log"
	}
	return logFolderPath
}

func GetSettingsPath() string {
	settingsPath := os.Getenv("PORTAL_CONFIG")
	if settingsPath == "" {
		settingsPath = "portal.toml"
	}
	return settingsPath
}
