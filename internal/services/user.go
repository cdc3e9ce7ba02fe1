package services

import (
	"context"
	"errors"
	"strings"

	"govhub/internal/config"
	"govhub/internal/models"
	"govhub/internal/store"
)

// UserService resolves wallet addresses to identity rows.
type UserService struct {
	store store.Store
	cfg   *config.Config
}

func NewUserService(st store.Store, cfg *config.Config) *UserService {
	return &UserService{store: st, cfg: cfg}
}

// FindOrCreateByWallet returns the user for the address, creating one on
// first login. The admin flag is decided once at creation from the
// configured allow-list; later allow-list changes do not touch existing rows.
func (s *UserService) FindOrCreateByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	walletAddress = strings.ToLower(walletAddress)

	user, err := s.store.GetUserByWallet(ctx, walletAddress)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = &models.User{
		WalletAddress: walletAddress,
		IsAdmin:       s.cfg.IsAdminAddress(walletAddress),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// Two first logins racing on one address: the unique index let one
		// insert win, use that row.
		if errors.Is(err, store.ErrDuplicate) {
			return s.store.GetUserByWallet(ctx, walletAddress)
		}
		return nil, err
	}
	return user, nil
}

// GetByID looks up a user by id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}
