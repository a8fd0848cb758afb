package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UserEntry is one account allowed to sign in to the front-end
type UserEntry struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
}

// UsersConfig holds the configured accounts
type UsersConfig struct {
	Users []UserEntry `yaml:"users"`

	byEmail map[string]*UserEntry
}

// LoadUsersConfig loads the user directory from a YAML file
func LoadUsersConfig(path string) (*UsersConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read users config file: %w", err)
	}
	return ParseUsersConfig(data)
}

// ParseUsersConfig parses and validates YAML user directory content
func ParseUsersConfig(data []byte) (*UsersConfig, error) {
	var cfg UsersConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse users config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.byEmail = make(map[string]*UserEntry, len(cfg.Users))
	for i := range cfg.Users {
		entry := &cfg.Users[i]
		cfg.byEmail[strings.ToLower(entry.Email)] = entry
	}

	return &cfg, nil
}

// Validate validates the users configuration
func (c *UsersConfig) Validate() error {
	seen := make(map[string]bool)
	for _, u := range c.Users {
		if u.Email == "" {
			return fmt.Errorf("email is required for every user")
		}
		if u.PasswordHash == "" {
			return fmt.Errorf("password_hash is required for user %s", u.Email)
		}
		key := strings.ToLower(u.Email)
		if seen[key] {
			return fmt.Errorf("duplicate user %s", u.Email)
		}
		seen[key] = true
	}
	return nil
}

// Lookup finds a user by email, case-insensitively
func (c *UsersConfig) Lookup(email string) (*UserEntry, bool) {
	u, ok := c.byEmail[strings.ToLower(email)]
	return u, ok
}
