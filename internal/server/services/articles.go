// ArticleService: article CRUD with slug generation and presigned S3
// uploads for article images. HTML sanitization of the body is the
// frontend's concern.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/avoronins/inkpost/internal/common"
	"github.com/avoronins/inkpost/internal/dbx"
	sc "github.com/avoronins/inkpost/internal/server/config"
	"github.com/avoronins/inkpost/internal/server/models"
	"github.com/avoronins/inkpost/internal/server/repositories/repomanager"
)

const (
	maxSlugLen      = 80
	defaultPageSize = 20
	maxPageSize     = 100
)

type ArticleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewArticleService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ArticleService {
	return &ArticleService{db: db, repomanager: m, config: cfg}
}

// Create stores a new article for authorID. The slug is derived from the
// title; on collision a short random suffix is appended once.
func (s *ArticleService) Create(ctx context.Context, authorID, title, body, imageKey string) (*models.Article, error) {
	if err := validateArticle(title, body); err != nil {
		return nil, err
	}

	repo := s.repomanager.Articles(s.db)

	article := &models.Article{
		AuthorID: authorID,
		Slug:     Slugify(title),
		Title:    title,
		Body:     body,
		ImageKey: imageKey,
	}

	created, err := repo.Create(ctx, article)
	if errors.Is(err, common.ErrAlreadyExists) {
		article.Slug = article.Slug + "-" + uuid.NewString()[:8]
		created, err = repo.Create(ctx, article)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating article: %w", err)
	}

	return created, nil
}

func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return s.repomanager.Articles(s.db).GetBySlug(ctx, slug)
}

func (s *ArticleService) List(ctx context.Context, limit, offset int) ([]*models.Article, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.repomanager.Articles(s.db).List(ctx, limit, offset)
}

// Update replaces title/body/imageKey of the article identified by slug.
// Only the author may update; the slug stays stable so published links
// keep working. Ownership check and write run in one transaction.
func (s *ArticleService) Update(ctx context.Context, userID, slug, title, body, imageKey string) (*models.Article, error) {
	if err := validateArticle(title, body); err != nil {
		return nil, err
	}

	var updated *models.Article
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Articles(tx)

		article, err := repo.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if article.AuthorID != userID {
			return common.ErrForbidden
		}

		article.Title = title
		article.Body = body
		article.ImageKey = imageKey

		updated, err = repo.Update(ctx, article)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the article identified by slug; author-only.
func (s *ArticleService) Delete(ctx context.Context, userID, slug string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Articles(tx)

		article, err := repo.GetBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if article.AuthorID != userID {
			return common.ErrForbidden
		}

		return repo.Delete(ctx, article.ID)
	})
}

// PresignedImageUpload returns a fresh object key plus a presigned PUT URL
// the client uploads the image to directly; the key is then attached to an
// article as imageKey.
func (s *ArticleService) PresignedImageUpload(ctx context.Context) (string, string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := randomStorageKey()

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignedImageURL returns a presigned GET URL for a stored image key.
func (s *ArticleService) PresignedImageURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// --- helpers below ---

func (s *ArticleService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return s3.NewPresignClient(client), nil
}

func randomStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("images/%d/%02d/%02d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

func validateArticle(title, body string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", common.ErrValidation)
	}
	if len(title) > 200 {
		return fmt.Errorf("%w: title must be at most 200 characters", common.ErrValidation)
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: body must not be empty", common.ErrValidation)
	}
	return nil
}

// Slugify lowercases the title and replaces every non-alphanumeric run with
// a single dash. The result is trimmed to maxSlugLen.
func Slugify(title string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash

	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = uuid.NewString()[:8]
	}
	return slug
}
