package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/auth"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/posts"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PostService serves the board. Every operation requires a session;
// deleting is reserved to the author and admins.
type PostService struct {
	posts  posts.Repository
	logger logging.Logger
	now    func() time.Time
}

// NewPostService returns a PostService over the post store of m.
func NewPostService(m repomanager.RepositoryManager, logger logging.Logger) *PostService {
	return &PostService{
		posts:  m.Posts(),
		logger: logger.With("module", "posts"),
		now:    time.Now,
	}
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context, caller *models.Identity) ([]*models.Post, error) {
	if err := auth.Authorize(caller, auth.Authenticated); err != nil {
		return nil, err
	}
	return wrapList(s.posts.List(ctx))
}

// Search matches q case-insensitively anywhere in the content. q is taken
// literally.
func (s *PostService) Search(ctx context.Context, caller *models.Identity, q string) ([]*models.Post, error) {
	if err := auth.Authorize(caller, auth.Authenticated); err != nil {
		return nil, err
	}
	return wrapList(s.posts.Search(ctx, q))
}

// ListByAuthor returns the posts of authorID, newest first. An unknown
// author yields an empty list.
func (s *PostService) ListByAuthor(ctx context.Context, caller *models.Identity, authorID string) ([]*models.Post, error) {
	if err := auth.Authorize(caller, auth.Authenticated); err != nil {
		return nil, err
	}
	return wrapList(s.posts.ListByAuthor(ctx, authorID))
}

// Create publishes content under the caller's name. Content that is empty
// after trimming is rejected with common.ErrorValidation; it is stored
// untrimmed otherwise.
func (s *PostService) Create(ctx context.Context, caller *models.Identity, content string) (*models.Post, error) {
	if err := auth.Authorize(caller, auth.Authenticated); err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content must not be empty", common.ErrorValidation)
	}

	post := &models.Post{
		ID:             uuid.NewString(),
		AuthorID:       caller.ID,
		AuthorUsername: caller.Username,
		Content:        content,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, internal(err)
	}
	return post, nil
}

// Delete removes postID. Only its author or an admin may do so; others get
// common.ErrForbidden.
func (s *PostService) Delete(ctx context.Context, caller *models.Identity, postID string) error {
	if err := auth.Authorize(caller, auth.Authenticated); err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internal(err)
	}
	if err := auth.AuthorizeOwner(caller, post.AuthorID); err != nil {
		return err
	}

	if _, err := s.posts.Delete(ctx, postID); err != nil {
		return internal(err)
	}
	if caller.ID != post.AuthorID {
		s.logger.Info(ctx, "post removed by admin", "admin_id", caller.ID, "post_id", postID, "author_id", post.AuthorID)
	}
	return nil
}

func wrapList(list []*models.Post, err error) ([]*models.Post, error) {
	if err != nil {
		return nil, internal(err)
	}
	if list == nil {
		list = []*models.Post{}
	}
	return list, nil
}
