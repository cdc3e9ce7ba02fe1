package services

import (
	"context"
	"testing"

	"govhub/internal/config"
	"govhub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateByWallet(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{AdminAddresses: []string{"0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc"}}
	svc := NewUserService(store.NewMemory(), cfg)

	user, err := svc.FindOrCreateByWallet(ctx, "0xABCDEF0000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0000000000000000000000000000000001", user.WalletAddress, "address stored lowercased")
	assert.False(t, user.IsAdmin)
	assert.NotEmpty(t, user.ID)

	// Second login with different casing resolves to the same row.
	again, err := svc.FindOrCreateByWallet(ctx, "0xabcdef0000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
}

func TestFindOrCreateAdminFlag(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{AdminAddresses: []string{"0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc"}}
	st := store.NewMemory()
	svc := NewUserService(st, cfg)

	admin, err := svc.FindOrCreateByWallet(ctx, "0x9965507D1a55bCC2695C58ba16FB37d819B0A4dC")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	// Shrinking the allow-list does not revoke an existing row's flag.
	cfg.AdminAddresses = nil
	again, err := svc.FindOrCreateByWallet(ctx, admin.WalletAddress)
	require.NoError(t, err)
	assert.True(t, again.IsAdmin)
}
