package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"govhub/internal/apperr"
	"govhub/internal/models"
	"govhub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type voteFixture struct {
	svc     *VoteService
	store   store.Store
	alice   *models.User
	bob     *models.User
	post    *models.Post
	comment *models.Comment
}

func newVoteFixture(t *testing.T) *voteFixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()

	alice := &models.User{WalletAddress: "0xaaa1"}
	bob := &models.User{WalletAddress: "0xbbb2"}
	require.NoError(t, st.CreateUser(ctx, alice))
	require.NoError(t, st.CreateUser(ctx, bob))

	post := &models.Post{Title: "Proposal 1", Slug: "proposal-1", Content: "body", Published: true, AuthorID: alice.ID}
	require.NoError(t, st.CreatePost(ctx, post))

	comment := &models.Comment{Text: "first", PostID: post.ID, UserID: bob.ID}
	require.NoError(t, st.CreateComment(ctx, comment))

	return &voteFixture{
		svc:     NewVoteService(st),
		store:   st,
		alice:   alice,
		bob:     bob,
		post:    post,
		comment: comment,
	}
}

func appCode(t *testing.T, err error) apperr.Code {
	t.Helper()
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.Code
}

func TestCastValidation(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Cast(ctx, f.alice.ID, "proposal", f.post.ID, 1)
	assert.Equal(t, apperr.CodeInvalidInput, appCode(t, err))

	_, _, err = f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 2)
	assert.Equal(t, apperr.CodeInvalidInput, appCode(t, err))

	_, _, err = f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 0)
	assert.Equal(t, apperr.CodeInvalidInput, appCode(t, err))
}

func TestCastTargetMissing(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Cast(ctx, f.alice.ID, models.TargetPost, "missing", 1)
	assert.Equal(t, apperr.CodeNotFound, appCode(t, err))

	_, _, err = f.svc.Cast(ctx, f.alice.ID, models.TargetComment, "missing", -1)
	assert.Equal(t, apperr.CodeNotFound, appCode(t, err))
}

// Score always equals the sum of the stored votes: 0 -> 1 -> 2 -> 1.
func TestScoreIsSumOfVotes(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	score, err := f.svc.Score(ctx, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	_, score, err = f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	_, score, err = f.svc.Cast(ctx, f.bob.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, score)

	score, err = f.svc.Remove(ctx, f.alice.ID, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, score)
}

func TestCastOverwritesValue(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	_, score, err := f.svc.Cast(ctx, f.alice.ID, models.TargetComment, f.comment.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, score)

	// Opposite value overwrites the row in place.
	vote, score, err := f.svc.Cast(ctx, f.alice.ID, models.TargetComment, f.comment.ID, -1)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, -1, vote.Value)
	assert.Equal(t, -1, score)

	votes, err := f.svc.ListUserVotes(ctx, f.alice.ID, models.TargetComment, f.comment.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestCastToggleOff(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	vote, score, err := f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, 1, score)

	// Same value again removes the vote.
	vote, score, err = f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, vote)
	assert.Equal(t, 0, score)

	votes, err := f.svc.ListUserVotes(ctx, f.alice.ID, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)

	// Cast, remove, cast again lands in the same state as a single cast.
	_, _, err = f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.Remove(ctx, f.alice.ID, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	vote, score, err = f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, vote)
	assert.Equal(t, 1, vote.Value)
	assert.Equal(t, 1, score)
}

func TestRemoveIdempotent(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	// Removing a vote that never existed is not an error.
	score, err := f.svc.Remove(ctx, f.alice.ID, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	_, _, err = f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, -1)
	require.NoError(t, err)

	score, err = f.svc.Remove(ctx, f.alice.ID, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score)

	score, err = f.svc.Remove(ctx, f.alice.ID, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score)
}

// Concurrent duplicate casts must never leave more than one row for the
// tuple, and the final score must be explainable by the surviving rows.
func TestConcurrentDuplicateCasts(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	votes, err := f.svc.ListUserVotes(ctx, f.alice.ID, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(votes), 1)

	score, err := f.svc.Score(ctx, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, len(votes), score)
}

func TestListUserVotesFilters(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)
	_, _, err = f.svc.Cast(ctx, f.alice.ID, models.TargetComment, f.comment.ID, -1)
	require.NoError(t, err)
	_, _, err = f.svc.Cast(ctx, f.bob.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)

	all, err := f.svc.ListUserVotes(ctx, f.alice.ID, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	postOnly, err := f.svc.ListUserVotes(ctx, f.alice.ID, models.TargetPost, "")
	require.NoError(t, err)
	require.Len(t, postOnly, 1)
	assert.Equal(t, f.post.ID, postOnly[0].TargetID)
}

func TestScoresAreIndependentPerTarget(t *testing.T) {
	f := newVoteFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Cast(ctx, f.alice.ID, models.TargetPost, f.post.ID, 1)
	require.NoError(t, err)
	_, _, err = f.svc.Cast(ctx, f.alice.ID, models.TargetComment, f.comment.ID, -1)
	require.NoError(t, err)

	postScore, err := f.svc.Score(ctx, models.TargetPost, f.post.ID)
	require.NoError(t, err)
	commentScore, err := f.svc.Score(ctx, models.TargetComment, f.comment.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, postScore)
	assert.Equal(t, -1, commentScore)
}
