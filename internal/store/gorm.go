package store

import (
	"context"
	"errors"
	"fmt"

	"govhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

// NewGorm wraps a gorm connection in the Store interface.
func NewGorm(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// Users

func (s *gormStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "wallet_address = ?", walletAddress).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

// Posts

func (s *gormStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *gormStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("Author").First(&post, "slug = ?", slug).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *gormStore) ListPosts(ctx context.Context, offset, limit int) ([]models.Post, int64, error) {
	var posts []models.Post
	q := s.db.WithContext(ctx).Model(&models.Post{}).Where("published = ?", true)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}
	err := q.Preload("Author").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, translate(err)
	}
	return posts, total, nil
}

func (s *gormStore) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, translate(err)
}

func (s *gormStore) CreatePost(ctx context.Context, post *models.Post) error {
	return translate(s.db.WithContext(ctx).Create(post).Error)
}

func (s *gormStore) UpdatePost(ctx context.Context, post *models.Post) error {
	return translate(s.db.WithContext(ctx).Save(post).Error)
}

// DeletePost removes the post, its comments, and every vote referencing the
// post or its comments, in one transaction.
func (s *gormStore) DeletePost(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []string
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetComment, commentIDs).
				Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetPost, id).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

// Comments

func (s *gormStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("User").First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *gormStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, translate(err)
}

func (s *gormStore) CountComments(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, translate(err)
}

func (s *gormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	return translate(s.db.WithContext(ctx).Create(comment).Error)
}

func (s *gormStore) DeleteComment(ctx context.Context, id string) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetComment, id).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

// Votes

func (s *gormStore) GetVote(ctx context.Context, userID, targetType, targetID string) (*models.Vote, error) {
	var vote models.Vote
	err := s.db.WithContext(ctx).
		First(&vote, "user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).Error
	if err != nil {
		return nil, translate(err)
	}
	return &vote, nil
}

// UpsertVote writes the vote with the composite unique index as arbiter:
// insert when absent, overwrite value when present. One statement, so two
// concurrent casts for the same tuple can never leave two rows.
func (s *gormStore) UpsertVote(ctx context.Context, vote *models.Vote) error {
	return translate(s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"}, {Name: "target_type"}, {Name: "target_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(vote).Error)
}

func (s *gormStore) DeleteVote(ctx context.Context, userID, targetType, targetID string) error {
	// No RowsAffected check: removing a missing vote is not an error.
	return translate(s.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Delete(&models.Vote{}).Error)
}

func (s *gormStore) ListVotes(ctx context.Context, userID, targetType, targetID string) ([]models.Vote, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if targetType != "" {
		q = q.Where("target_type = ?", targetType)
	}
	if targetID != "" {
		q = q.Where("target_id = ?", targetID)
	}
	var votes []models.Vote
	err := q.Find(&votes).Error
	return votes, translate(err)
}

func (s *gormStore) SumVotes(ctx context.Context, targetType, targetID string) (int, error) {
	var sum int64
	err := s.db.WithContext(ctx).Model(&models.Vote{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Select("COALESCE(SUM(value), 0)").
		Scan(&sum).Error
	return int(sum), translate(err)
}

func (s *gormStore) TargetExists(ctx context.Context, targetType, targetID string) (bool, error) {
	var count int64
	var err error
	switch targetType {
	case models.TargetPost:
		err = s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", targetID).Count(&count).Error
	case models.TargetComment:
		err = s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", targetID).Count(&count).Error
	default:
		return false, fmt.Errorf("unknown target type %q", targetType)
	}
	return count > 0, translate(err)
}

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	}))
}
