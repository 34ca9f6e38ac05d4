package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/bacheca/internal/common"
	"github.com/dmitrijs2005/bacheca/internal/dbx"
	"github.com/dmitrijs2005/bacheca/internal/server/models"
)

const selectPosts = `SELECT id, author_id, author_username, content, created_at FROM posts`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (id, author_id, author_username, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, post.ID, post.AuthorID, post.AuthorUsername, post.Content, post.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	p := &models.Post{}
	err := r.db.QueryRowContext(ctx, selectPosts+` WHERE id = $1`, id).
		Scan(&p.ID, &p.AuthorID, &p.AuthorUsername, &p.Content, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.query(ctx, selectPosts+` ORDER BY created_at DESC LIMIT $1`, common.MaxListSize)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	return r.query(ctx, selectPosts+` WHERE author_id = $1 ORDER BY created_at DESC LIMIT $2`, authorID, common.MaxListSize)
}

func (r *PostgresRepository) Search(ctx context.Context, query string) ([]*models.Post, error) {
	return r.query(ctx, selectPosts+` WHERE content ILIKE $1 ESCAPE '\' ORDER BY created_at DESC LIMIT $2`,
		"%"+escapeLike(query)+"%", common.MaxListSize)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (int64, error) {
	return r.exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
}

func (r *PostgresRepository) DeleteByAuthor(ctx context.Context, authorID string) (int64, error) {
	return r.exec(ctx, `DELETE FROM posts WHERE author_id = $1`, authorID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Post, 0)
	for rows.Next() {
		p := &models.Post{}
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.AuthorUsername, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes query match literally inside a LIKE pattern.
func escapeLike(query string) string {
	return likeEscaper.Replace(query)
}
