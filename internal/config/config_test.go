package config_test

import (
	"testing"

	"github.com/patterns42/workshop-registration/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "test-hash-123", cfg.TestHash)
	require.Equal(t, []int{2, 4}, cfg.SlotIDs)
}

func TestLoadRequiresAdminCredentials(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoadCustomSlotIDs(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("SLOT_IDS", "1, 3, 5")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, []int{1, 3, 5}, cfg.SlotIDs)
}

func TestLoadRejectsBadSlotIDs(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("SLOT_IDS", "2,apple")

	_, err := config.Load()
	require.Error(t, err)
}
