package model

// Config holds the process-level bot configuration loaded at startup.
type Config struct {
	BotToken     string
	AppID        string
	DatabasePath string
	LogLevel     string
}
