package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mwalden2/inkwell/api/v1/models"
)

// ArticlePatch carries the fields of a merge-patch article update. Nil fields
// are left untouched. The author can never be patched.
type ArticlePatch struct {
	Title   *string
	Content *string
}

func (s *Store) CreateArticle(ctx context.Context, article *models.Article) error {
	insertQuery := `
		INSERT INTO articles (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := s.Pool.QueryRow(ctx, insertQuery,
		article.Title, article.Content, article.AuthorID,
	).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: failed to create article", ErrDatabaseError)
	}

	return nil
}

func (s *Store) GetArticle(ctx context.Context, articleID int64) (*models.Article, error) {
	getQuery := `
		SELECT id, title, content, author_id, created_at
		FROM articles
		WHERE id = $1`

	var article models.Article
	err := s.Pool.QueryRow(ctx, getQuery, articleID).Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.AuthorID,
		&article.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("article with ID %d not found: %w", articleID, ErrNoArticle)
		}
		return nil, fmt.Errorf("%w: failed to retrieve article", ErrDatabaseError)
	}

	return &article, nil
}

func (s *Store) ListArticles(ctx context.Context, skip, limit int) ([]models.Article, error) {
	listQuery := `
		SELECT id, title, content, author_id, created_at
		FROM articles
		ORDER BY id
		LIMIT $1 OFFSET $2`

	return s.queryArticles(ctx, listQuery, limit, skip)
}

func (s *Store) ListArticlesByAuthor(ctx context.Context, authorID int64, skip, limit int) ([]models.Article, error) {
	listQuery := `
		SELECT id, title, content, author_id, created_at
		FROM articles
		WHERE author_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`

	return s.queryArticles(ctx, listQuery, authorID, limit, skip)
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...interface{}) ([]models.Article, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get articles", ErrDatabaseError)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		var article models.Article
		err := rows.Scan(
			&article.ID,
			&article.Title,
			&article.Content,
			&article.AuthorID,
			&article.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan article data", ErrDatabaseError)
		}
		articles = append(articles, article)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate articles", ErrDatabaseError)
	}

	return articles, nil
}

// UpdateArticle applies a merge-patch to an article inside one transaction.
func (s *Store) UpdateArticle(ctx context.Context, articleID int64, patch *ArticlePatch) (*models.Article, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to start transaction", ErrDatabaseError)
	}
	defer tx.Rollback(ctx)

	selectQuery := `
		SELECT id, title, content, author_id, created_at
		FROM articles
		WHERE id = $1
		FOR UPDATE`

	var article models.Article
	err = tx.QueryRow(ctx, selectQuery, articleID).Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.AuthorID,
		&article.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("article with ID %d not found: %w", articleID, ErrNoArticle)
		}
		return nil, fmt.Errorf("%w: failed to retrieve article for update", ErrDatabaseError)
	}

	if patch.Title != nil {
		article.Title = *patch.Title
	}
	if patch.Content != nil {
		article.Content = *patch.Content
	}

	updateQuery := `
		UPDATE articles
		SET title = $1, content = $2
		WHERE id = $3`

	_, err = tx.Exec(ctx, updateQuery, article.Title, article.Content, articleID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to update article", ErrDatabaseError)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to commit transaction", ErrDatabaseError)
	}

	return &article, nil
}

func (s *Store) DeleteArticle(ctx context.Context, articleID int64) error {
	tag, err := s.Pool.Exec(ctx, "DELETE FROM articles WHERE id = $1", articleID)
	if err != nil {
		return fmt.Errorf("%w: failed to delete article", ErrDatabaseError)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article with ID %d does not exist: %w", articleID, ErrNoArticle)
	}

	return nil
}
