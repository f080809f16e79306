package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Output formats accepted by -o
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
}

// DefaultConfig reads DECKDUEL_* variables, falling back to a local server
// and a token file under the home directory
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("DECKDUEL_SERVER", "http://localhost:8080"),
		Token:     strings.TrimSpace(os.Getenv("DECKDUEL_TOKEN")),
		TokenFile: getEnvOrDefault("DECKDUEL_TOKEN_FILE", defaultTokenFile()),
		Output:    getEnvOrDefault("DECKDUEL_OUTPUT", OutputText),
	}
}

// Validate rejects settings no command could work with
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", c.Output, OutputText, OutputJSON)
	}
	if c.ServerURL == "" {
		return errors.New("server URL is empty")
	}
	return nil
}

// LoadToken reads the saved session unless a token was given explicitly. A
// missing file just means nobody has logged in yet.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken stores the session token. It writes a temporary file and renames
// it so a crash never leaves a half-written token behind.
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.TokenFile)
}

// ClearToken forgets the saved session
func (c *Config) ClearToken() error {
	c.Token = ""
	if err := os.Remove(c.TokenFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".deckduel", "token")
	}
	return filepath.Join(home, ".deckduel", "token")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
