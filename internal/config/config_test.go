package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadAdminAddresses(t *testing.T) {
	t.Setenv("ADMIN_ADDRESSES", " 0xAbC0000000000000000000000000000000000001, 0xDEF0000000000000000000000000000000000002 ,,")

	cfg := Load()
	assert.Equal(t, []string{
		"0xabc0000000000000000000000000000000000001",
		"0xdef0000000000000000000000000000000000002",
	}, cfg.AdminAddresses)
}

func TestIsAdminAddress(t *testing.T) {
	cfg := &Config{AdminAddresses: []string{"0xabc0000000000000000000000000000000000001"}}

	assert.True(t, cfg.IsAdminAddress("0xabc0000000000000000000000000000000000001"))
	assert.True(t, cfg.IsAdminAddress("0xABC0000000000000000000000000000000000001"))
	assert.False(t, cfg.IsAdminAddress("0xdef0000000000000000000000000000000000002"))
	assert.False(t, cfg.IsAdminAddress(""))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_ADDRESSES", "")
	t.Setenv("PORT", "")
	t.Setenv("CHAIN_ID", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1, cfg.ChainID)
	assert.Empty(t, cfg.AdminAddresses)
	assert.False(t, cfg.IsProduction())
}
