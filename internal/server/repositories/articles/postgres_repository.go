package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avoronins/inkpost/internal/common"
	"github.com/avoronins/inkpost/internal/dbx"
	"github.com/avoronins/inkpost/internal/server/models"
)

const uniqueViolationCode = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, article *models.Article) (*models.Article, error) {

	query :=
		`INSERT INTO articles (author_id, slug, title, body, image_key)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		article.AuthorID, article.Slug, article.Title, article.Body, article.ImageKey).
		Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return article, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	query :=
		`SELECT id, author_id, slug, title, body, image_key, created_at, updated_at FROM articles
		 WHERE slug = $1
		 `

	article := &models.Article{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&article.ID, &article.AuthorID, &article.Slug, &article.Title,
		&article.Body, &article.ImageKey, &article.CreatedAt, &article.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return article, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	query :=
		`SELECT id, author_id, slug, title, body, image_key, created_at, updated_at FROM articles
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Article
	for rows.Next() {
		article := &models.Article{}
		if err := rows.Scan(
			&article.ID, &article.AuthorID, &article.Slug, &article.Title,
			&article.Body, &article.ImageKey, &article.CreatedAt, &article.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, article *models.Article) (*models.Article, error) {
	query :=
		`UPDATE articles SET title = $1, body = $2, image_key = $3, updated_at = now()
		 WHERE id = $4
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		article.Title, article.Body, article.ImageKey, article.ID).
		Scan(&article.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return article, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	return nil
}
