package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"govhub/internal/models"

	"github.com/google/uuid"
)

// memStore is an in-memory Store used by tests. A single mutex serializes
// every operation, which also makes WithTx trivially atomic.
type memStore struct {
	mu       *sync.Mutex
	users    map[string]*models.User
	posts    map[string]*models.Post
	comments map[string]*models.Comment
	votes    map[voteKey]*models.Vote
	inTx     bool
}

type voteKey struct {
	userID     string
	targetType string
	targetID   string
}

func NewMemory() Store {
	return &memStore{
		mu:       &sync.Mutex{},
		users:    make(map[string]*models.User),
		posts:    make(map[string]*models.Post),
		comments: make(map[string]*models.Comment),
		votes:    make(map[voteKey]*models.Vote),
	}
}

func (s *memStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// Users

func (s *memStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	defer s.lock()()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) GetUserByWallet(ctx context.Context, walletAddress string) (*models.User, error) {
	defer s.lock()()
	for _, u := range s.users {
		if u.WalletAddress == walletAddress {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) CreateUser(ctx context.Context, user *models.User) error {
	defer s.lock()()
	for _, u := range s.users {
		if u.WalletAddress == user.WalletAddress {
			return ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

// Posts

func (s *memStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	defer s.lock()()
	p, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	s.fillAuthor(&cp)
	return &cp, nil
}

func (s *memStore) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	defer s.lock()()
	for _, p := range s.posts {
		if p.Slug == slug {
			cp := *p
			s.fillAuthor(&cp)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memStore) fillAuthor(p *models.Post) {
	if u, ok := s.users[p.AuthorID]; ok {
		p.Author = *u
	}
}

func (s *memStore) ListPosts(ctx context.Context, offset, limit int) ([]models.Post, int64, error) {
	defer s.lock()()
	var posts []models.Post
	for _, p := range s.posts {
		if p.Published {
			cp := *p
			s.fillAuthor(&cp)
			posts = append(posts, cp)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	total := int64(len(posts))
	if offset >= len(posts) {
		return nil, total, nil
	}
	posts = posts[offset:]
	if limit > 0 && limit < len(posts) {
		posts = posts[:limit]
	}
	return posts, total, nil
}

func (s *memStore) CountPosts(ctx context.Context) (int64, error) {
	defer s.lock()()
	return int64(len(s.posts)), nil
}

func (s *memStore) CreatePost(ctx context.Context, post *models.Post) error {
	defer s.lock()()
	for _, p := range s.posts {
		if p.Slug == post.Slug {
			return ErrDuplicate
		}
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *memStore) UpdatePost(ctx context.Context, post *models.Post) error {
	defer s.lock()()
	if _, ok := s.posts[post.ID]; !ok {
		return ErrNotFound
	}
	post.UpdatedAt = time.Now()
	cp := *post
	s.posts[post.ID] = &cp
	return nil
}

func (s *memStore) DeletePost(ctx context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
			for k := range s.votes {
				if k.targetType == models.TargetComment && k.targetID == cid {
					delete(s.votes, k)
				}
			}
		}
	}
	for k := range s.votes {
		if k.targetType == models.TargetPost && k.targetID == id {
			delete(s.votes, k)
		}
	}
	delete(s.posts, id)
	return nil
}

// Comments

func (s *memStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	defer s.lock()()
	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	if u, ok := s.users[cp.UserID]; ok {
		cp.User = *u
	}
	return &cp, nil
}

func (s *memStore) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	defer s.lock()()
	var comments []models.Comment
	for _, c := range s.comments {
		if c.PostID == postID {
			cp := *c
			if u, ok := s.users[cp.UserID]; ok {
				cp.User = *u
			}
			comments = append(comments, cp)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *memStore) CountComments(ctx context.Context, postID string) (int64, error) {
	defer s.lock()()
	var count int64
	for _, c := range s.comments {
		if c.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (s *memStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	defer s.lock()()
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	cp := *comment
	s.comments[comment.ID] = &cp
	return nil
}

func (s *memStore) DeleteComment(ctx context.Context, id string) error {
	defer s.lock()()
	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}
	for k := range s.votes {
		if k.targetType == models.TargetComment && k.targetID == id {
			delete(s.votes, k)
		}
	}
	delete(s.comments, id)
	return nil
}

// Votes

func (s *memStore) GetVote(ctx context.Context, userID, targetType, targetID string) (*models.Vote, error) {
	defer s.lock()()
	v, ok := s.votes[voteKey{userID, targetType, targetID}]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *memStore) UpsertVote(ctx context.Context, vote *models.Vote) error {
	defer s.lock()()
	key := voteKey{vote.UserID, vote.TargetType, vote.TargetID}
	if existing, ok := s.votes[key]; ok {
		existing.Value = vote.Value
		existing.UpdatedAt = time.Now()
		*vote = *existing
		return nil
	}
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}
	vote.CreatedAt = time.Now()
	vote.UpdatedAt = vote.CreatedAt
	cp := *vote
	s.votes[key] = &cp
	return nil
}

func (s *memStore) DeleteVote(ctx context.Context, userID, targetType, targetID string) error {
	defer s.lock()()
	delete(s.votes, voteKey{userID, targetType, targetID})
	return nil
}

func (s *memStore) ListVotes(ctx context.Context, userID, targetType, targetID string) ([]models.Vote, error) {
	defer s.lock()()
	var votes []models.Vote
	for k, v := range s.votes {
		if k.userID != userID {
			continue
		}
		if targetType != "" && k.targetType != targetType {
			continue
		}
		if targetID != "" && k.targetID != targetID {
			continue
		}
		votes = append(votes, *v)
	}
	return votes, nil
}

func (s *memStore) SumVotes(ctx context.Context, targetType, targetID string) (int, error) {
	defer s.lock()()
	sum := 0
	for k, v := range s.votes {
		if k.targetType == targetType && k.targetID == targetID {
			sum += v.Value
		}
	}
	return sum, nil
}

func (s *memStore) TargetExists(ctx context.Context, targetType, targetID string) (bool, error) {
	defer s.lock()()
	switch targetType {
	case models.TargetPost:
		_, ok := s.posts[targetID]
		return ok, nil
	case models.TargetComment:
		_, ok := s.comments[targetID]
		return ok, nil
	}
	return false, nil
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memStore{
		mu:       s.mu,
		users:    s.users,
		posts:    s.posts,
		comments: s.comments,
		votes:    s.votes,
		inTx:     true,
	}
	return fn(tx)
}
