package store

import (
	"context"
	"errors"

	"govhub/internal/models"
)

// ErrNotFound is returned by lookups when no row matches. Implementations
// translate their driver's sentinel into this one.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a uniqueness constraint rejects a write
// (slug collision, concurrent vote insert).
var ErrDuplicate = errors.New("duplicate record")

// Store is the storage capability handed to services and handlers. Keeping it
// an interface lets the auth/vote core run against memStore in tests and
// gormStore in production.
type Store interface {
	// Users
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error

	// Posts
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	ListPosts(ctx context.Context, offset, limit int) ([]models.Post, int64, error)
	CountPosts(ctx context.Context) (int64, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error

	// Comments
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	CountComments(ctx context.Context, postID string) (int64, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id string) error

	// Vote ledger. UpsertVote is a single conditional write arbitrated by the
	// composite unique index. DeleteVote is idempotent: removing an absent
	// vote succeeds.
	GetVote(ctx context.Context, userID, targetType, targetID string) (*models.Vote, error)
	UpsertVote(ctx context.Context, vote *models.Vote) error
	DeleteVote(ctx context.Context, userID, targetType, targetID string) error
	ListVotes(ctx context.Context, userID, targetType, targetID string) ([]models.Vote, error)
	SumVotes(ctx context.Context, targetType, targetID string) (int, error)

	// TargetExists backs the referential check a vote must pass.
	TargetExists(ctx context.Context, targetType, targetID string) (bool, error)

	// WithTx runs fn against a Store bound to one transaction. Writes and the
	// score read inside fn commit or roll back together.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
