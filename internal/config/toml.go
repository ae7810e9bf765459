package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the optional TOML configuration file.
// Pointer fields distinguish "unset" from zero values.
type FileConfig struct {
	Server       ServerConfig       `toml:"server"`
	QuestionBank QuestionBankConfig `toml:"question_bank"`
	Session      SessionConfig      `toml:"session"`
}

type ServerConfig struct {
	Env          *string  `toml:"env"`
	Port         *string  `toml:"port"`
	AllowOrigins []string `toml:"allow_origins"`
}

type QuestionBankConfig struct {
	URL              *string `toml:"url"`
	Timeout          *string `toml:"timeout"`
	DefaultQuestions *int    `toml:"default_questions"`
	MaxQuestions     *int    `toml:"max_questions"`
}

type SessionConfig struct {
	Backend      *string `toml:"backend"`
	TTL          *string `toml:"ttl"`
	MemorySize   *int    `toml:"memory_size"`
	CookieSecure *bool   `toml:"cookie_secure"`
}

// LoadFile reads a TOML config from the given path. Missing file is not an error.
func LoadFile(path string) (FileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := fc.check(); err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}

func (fc FileConfig) check() error {
	for name, raw := range map[string]*string{
		"question_bank.timeout": fc.QuestionBank.Timeout,
		"session.ttl":           fc.Session.TTL,
	} {
		if raw == nil {
			continue
		}
		if _, err := time.ParseDuration(*raw); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, *raw, err)
		}
	}
	return nil
}

func (fc FileConfig) apply(c *Config) {
	if fc.Server.Env != nil {
		c.Env = *fc.Server.Env
	}
	if fc.Server.Port != nil {
		c.Port = *fc.Server.Port
	}
	if len(fc.Server.AllowOrigins) > 0 {
		c.AllowOrigins = fc.Server.AllowOrigins
	}
	if fc.QuestionBank.URL != nil {
		c.QuestionBankURL = *fc.QuestionBank.URL
	}
	if fc.QuestionBank.Timeout != nil {
		c.QuestionBankTimeout, _ = time.ParseDuration(*fc.QuestionBank.Timeout)
	}
	if fc.QuestionBank.DefaultQuestions != nil {
		c.DefaultQuestions = *fc.QuestionBank.DefaultQuestions
	}
	if fc.QuestionBank.MaxQuestions != nil {
		c.MaxQuestions = *fc.QuestionBank.MaxQuestions
	}
	if fc.Session.Backend != nil {
		c.SessionBackend = *fc.Session.Backend
	}
	if fc.Session.TTL != nil {
		c.SessionTTL, _ = time.ParseDuration(*fc.Session.TTL)
	}
	if fc.Session.MemorySize != nil {
		c.SessionMemorySize = *fc.Session.MemorySize
	}
	if fc.Session.CookieSecure != nil {
		c.CookieSecure = *fc.Session.CookieSecure
	}
}
