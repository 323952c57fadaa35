// Package config stores the CLI's server connections.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	dirName  = ".ambientin"
	fileName = "config.json"
)

type Config struct {
	Version       int               `json:"version"`
	DefaultServer string            `json:"default_server"`
	Servers       map[string]Server `json:"servers"`
	Preferences   map[string]string `json:"preferences,omitempty"`
}

type Server struct {
	URL         string `json:"url"`
	Username    string `json:"username,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	ConnectedAt string `json:"connected_at"`
}

// Path returns the nearest .ambientin/config.json walking up from the working
// directory, falling back to the one in the home directory.
func Path() (string, error) {
	if wd, err := os.Getwd(); err == nil {
		for dir := wd; ; dir = filepath.Dir(dir) {
			candidate := filepath.Join(dir, dirName, fileName)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
			if filepath.Dir(dir) == dir {
				break
			}
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName, fileName), nil
}

func Load() (*Config, error) {
	p, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(p)
}

func LoadFile(p string) (*Config, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{
				Version:       1,
				DefaultServer: "main",
				Servers:       map[string]Server{},
				Preferences: map[string]string{
					"default_format": "table",
				},
			}, nil
		}
		return nil, err
	}
	var c Config
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.Servers == nil {
		c.Servers = map[string]Server{}
	}
	if c.DefaultServer == "" {
		c.DefaultServer = "main"
	}
	if c.Version == 0 {
		c.Version = 1
	}
	return &c, nil
}

func Save(c *Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

func SaveFile(p string, c *Config) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, append(b, '\n'), 0o600)
}

func (c *Config) SetDefault(url, username, userID string) {
	if c.Servers == nil {
		c.Servers = map[string]Server{}
	}
	c.Servers["main"] = Server{
		URL:         url,
		Username:    username,
		UserID:      userID,
		ConnectedAt: time.Now().UTC().Format(time.RFC3339),
	}
	c.DefaultServer = "main"
}

func (c *Config) ClearDefault() {
	delete(c.Servers, c.DefaultServer)
}

func (c *Config) Default() (Server, bool) {
	s, ok := c.Servers[c.DefaultServer]
	return s, ok
}

// Format is the preferred output format, empty when unset.
func (c *Config) Format() string {
	return c.Preferences["default_format"]
}
