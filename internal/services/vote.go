package services

import (
	"context"
	"errors"

	"govhub/internal/apperr"
	"govhub/internal/models"
	"govhub/internal/store"
)

// VoteService is the vote ledger: at most one vote per
// (user, targetType, targetId), toggle-off on repeat, score always the live
// sum of stored votes.
type VoteService struct {
	store store.Store
}

func NewVoteService(st store.Store) *VoteService {
	return &VoteService{store: st}
}

// Cast records value for the target, or removes the existing vote when the
// same value is cast again (toggle-off). The returned vote is nil on
// toggle-off. The write and the score read run in one transaction, so the
// returned score always reflects this very mutation.
func (s *VoteService) Cast(ctx context.Context, userID, targetType, targetID string, value int) (*models.Vote, int, error) {
	if !models.ValidTargetType(targetType) {
		return nil, 0, apperr.InvalidInput(`Invalid targetType. Must be "post" or "comment"`)
	}
	if value != 1 && value != -1 {
		return nil, 0, apperr.InvalidInput("Invalid vote value. Must be 1 (upvote) or -1 (downvote)")
	}
	if err := s.requireTarget(ctx, targetType, targetID); err != nil {
		return nil, 0, err
	}

	var (
		vote  *models.Vote
		score int
	)
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		existing, err := tx.GetVote(ctx, userID, targetType, targetID)
		switch {
		case err == nil && existing.Value == value:
			// Same value again: toggle off.
			if err := tx.DeleteVote(ctx, userID, targetType, targetID); err != nil {
				return err
			}
			vote = nil
		case err == nil || errors.Is(err, store.ErrNotFound):
			v := &models.Vote{
				UserID:     userID,
				TargetType: targetType,
				TargetID:   targetID,
				Value:      value,
			}
			if err := tx.UpsertVote(ctx, v); err != nil {
				// A concurrent insert losing the unique-index race is a
				// benign conflict: the row exists now, so retry once.
				if !errors.Is(err, store.ErrDuplicate) {
					return err
				}
				if err := tx.UpsertVote(ctx, v); err != nil {
					return err
				}
			}
			// Return the stored row: on overwrite the persisted id and
			// timestamps are the original ones, not v's.
			stored, err := tx.GetVote(ctx, userID, targetType, targetID)
			if err != nil {
				return err
			}
			vote = stored
		default:
			return err
		}

		score, err = tx.SumVotes(ctx, targetType, targetID)
		return err
	})
	if err != nil {
		return nil, 0, apperr.Internal("failed to process vote", err)
	}
	return vote, score, nil
}

// Remove deletes the user's vote for the target if present. Removing an
// absent vote is a no-op, not an error.
func (s *VoteService) Remove(ctx context.Context, userID, targetType, targetID string) (int, error) {
	if !models.ValidTargetType(targetType) {
		return 0, apperr.InvalidInput(`Invalid targetType. Must be "post" or "comment"`)
	}
	if err := s.requireTarget(ctx, targetType, targetID); err != nil {
		return 0, err
	}

	var score int
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.DeleteVote(ctx, userID, targetType, targetID); err != nil {
			return err
		}
		var err error
		score, err = tx.SumVotes(ctx, targetType, targetID)
		return err
	})
	if err != nil {
		return 0, apperr.Internal("failed to remove vote", err)
	}
	return score, nil
}

// Score recomputes the target's score as the sum of its votes.
func (s *VoteService) Score(ctx context.Context, targetType, targetID string) (int, error) {
	return s.store.SumVotes(ctx, targetType, targetID)
}

// ListUserVotes returns the user's votes, optionally filtered by target.
func (s *VoteService) ListUserVotes(ctx context.Context, userID, targetType, targetID string) ([]models.Vote, error) {
	return s.store.ListVotes(ctx, userID, targetType, targetID)
}

func (s *VoteService) requireTarget(ctx context.Context, targetType, targetID string) error {
	exists, err := s.store.TargetExists(ctx, targetType, targetID)
	if err != nil {
		return apperr.Internal("failed to check vote target", err)
	}
	if !exists {
		if targetType == models.TargetPost {
			return apperr.ErrPostNotFound
		}
		return apperr.ErrCommentNotFound
	}
	return nil
}
