package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
)

// PostRepository keeps posts in a map keyed by id. Reads return copies.
type PostRepository struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
}

func NewPostRepository() *PostRepository {
	return &PostRepository{posts: make(map[string]*models.Post)}
}

func (r *PostRepository) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[post.ID]; ok {
		return common.ErrorAlreadyExists
	}
	p := *post
	r.posts[p.ID] = &p
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *p
	return &c, nil
}

func (r *PostRepository) List(_ context.Context) ([]*models.Post, error) {
	return r.filter(func(*models.Post) bool { return true }), nil
}

func (r *PostRepository) ListByAuthor(_ context.Context, authorID string) ([]*models.Post, error) {
	return r.filter(func(p *models.Post) bool { return p.AuthorID == authorID }), nil
}

// Search is a case-insensitive substring match on content.
func (r *PostRepository) Search(_ context.Context, query string) ([]*models.Post, error) {
	q := strings.ToLower(query)
	return r.filter(func(p *models.Post) bool {
		return strings.Contains(strings.ToLower(p.Content), q)
	}), nil
}

func (r *PostRepository) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[id]; !ok {
		return 0, nil
	}
	delete(r.posts, id)
	return 1, nil
}

func (r *PostRepository) DeleteByAuthor(_ context.Context, authorID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, p := range r.posts {
		if p.AuthorID == authorID {
			delete(r.posts, id)
			n++
		}
	}
	return n, nil
}

// filter returns copies of the matching posts, newest first.
func (r *PostRepository) filter(match func(*models.Post) bool) []*models.Post {
	r.mu.RLock()
	result := make([]*models.Post, 0)
	for _, p := range r.posts {
		if match(p) {
			c := *p
			result = append(result, &c)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > common.MaxListSize {
		result = result[:common.MaxListSize]
	}
	return result
}
