package config

import (
	"os"
	"path/filepath"
)

const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
	SessionBackendNone   = "none"
)

type SessionConfig interface {
	GetSessionBackend() string
	GetSessionFile() string
	GetSessionKey() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisPrefix() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionBackend() string {
	return GetEnv("SESSION_BACKEND", SessionBackendFile)
}

func (Session) GetSessionFile() string {
	if f := os.Getenv("SESSION_FILE"); f != "" {
		return f
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./session.json"
	}
	return filepath.Join(dir, "solar-dashboard", "session.json")
}

// GetSessionKey is a hex encoded 32 byte key; empty leaves the session file unsealed.
func (Session) GetSessionKey() string {
	return GetEnv("SESSION_KEY", "")
}

func (Session) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Session) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Session) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", "solar:session:")
}
