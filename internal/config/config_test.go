package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) missingEnvFile() string {
	return filepath.Join(s.T().TempDir(), "absent.env")
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load(s.missingEnvFile())
	s.Require().NoError(err)

	s.Equal(8080, cfg.Port)
	s.Equal(StorageMemory, cfg.StorageType)
	s.Equal(LockLocal, cfg.LockType)
	s.Equal(DefaultRules(), cfg.Rules)
	s.Equal(24*time.Hour, cfg.SessionTTL)
}

func (s *ConfigSuite) TestEnvironmentOverrides() {
	s.T().Setenv("PORT", "9090")
	s.T().Setenv("MIN_DECK_SIZE", "10")
	s.T().Setenv("OPERATION_TIMEOUT", "2s")
	s.T().Setenv("NEUTRAL_FACTION", "Neutrals")

	cfg, err := Load(s.missingEnvFile())
	s.Require().NoError(err)
	s.Equal(9090, cfg.Port)
	s.Equal(10, cfg.Rules.MinDeckSize)
	s.Equal(2*time.Second, cfg.Rules.OperationTimeout)
	s.Equal("Neutrals", cfg.Rules.NeutralFaction)
}

func (s *ConfigSuite) TestDotEnvFile() {
	path := filepath.Join(s.T().TempDir(), "test.env")
	s.Require().NoError(os.WriteFile(path, []byte("MIN_TOP_UP=7000\n"), 0o600))
	// Setenv restores the original value afterwards; godotenv only fills unset variables
	s.T().Setenv("MIN_TOP_UP", "")
	s.Require().NoError(os.Unsetenv("MIN_TOP_UP"))

	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal(int64(7000), cfg.Rules.MinTopUp)
}

func (s *ConfigSuite) TestInvalidStorageType() {
	s.T().Setenv("STORAGE_TYPE", "sqlite")
	_, err := Load(s.missingEnvFile())
	s.ErrorContains(err, "invalid STORAGE_TYPE")
}

func (s *ConfigSuite) TestPostgresRequiresDSN() {
	s.T().Setenv("STORAGE_TYPE", "postgres")
	s.T().Setenv("POSTGRES_DSN", "")
	_, err := Load(s.missingEnvFile())
	s.ErrorContains(err, "POSTGRES_DSN")
}

func (s *ConfigSuite) TestAdminCredentialsTogether() {
	s.T().Setenv("ADMIN_USERNAME", "root")
	s.T().Setenv("ADMIN_PASSWORD", "")
	_, err := Load(s.missingEnvFile())
	s.ErrorContains(err, "ADMIN_USERNAME")
}

func (s *ConfigSuite) TestSlogLevel() {
	s.Equal(slog.LevelDebug, Config{LogLevel: "DEBUG"}.SlogLevel())
	s.Equal(slog.LevelWarn, Config{LogLevel: "warn"}.SlogLevel())
	s.Equal(slog.LevelInfo, Config{LogLevel: "nonsense"}.SlogLevel())
}
