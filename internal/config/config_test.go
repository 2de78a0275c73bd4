package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {

	t.Run("should use defaults when no file and no env present", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, 8181, cfg.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, "37500", cfg.Billing.LowerCap)
		assert.Equal(t, "77700", cfg.Billing.UpperCap)
		assert.Equal(t, "24.6", cfg.Billing.ContributionRate)
		assert.Equal(t, time.Second, cfg.Timer.TickInterval)
		assert.Equal(t, "accumulated", cfg.Timer.ElapsedMode)
	})

	t.Run("should override defaults from yaml file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := []byte("billing:\n  uppercap: \"80000.50\"\n  currency: USD\ndb:\n  name: books\n")
		require.NoError(t, os.WriteFile(path, content, 0o600))

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "80000.50", cfg.Billing.UpperCap)
		assert.Equal(t, "USD", cfg.Billing.Currency)
		assert.Equal(t, "books", cfg.Database.Name)
		assert.Equal(t, "37500", cfg.Billing.LowerCap)
	})

	t.Run("should let environment win over yaml file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db:\n  host: from-file\n"), 0o600))
		t.Setenv("FREELANCEOS_DB_HOST", "from-env")
		t.Setenv("FREELANCEOS_TIMER_TICKINTERVAL", "2s")

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Database.Host)
		assert.Equal(t, 2*time.Second, cfg.Timer.TickInterval)
	})
}
