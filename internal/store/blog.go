package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const blogPostColumns = `id, title, slug, excerpt, content, cover_image_url,
published, created_at, updated_at`

func scanBlogPost(row interface{ Scan(dest ...any) error }) (BlogPost, error) {
	var b BlogPost
	err := row.Scan(&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Content,
		&b.CoverImageUrl, &b.Published, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

const createBlogPost = `
INSERT INTO blog_posts (title, slug, excerpt, content, cover_image_url, published)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + blogPostColumns

// CreateBlogPostParams are the fields for a new post. Slug must be unique.
type CreateBlogPostParams struct {
	Title         string
	Slug          string
	Excerpt       pgtype.Text
	Content       string
	CoverImageUrl pgtype.Text
	Published     bool
}

func (s *Store) CreateBlogPost(ctx context.Context, arg CreateBlogPostParams) (BlogPost, error) {
	row := s.db.QueryRow(ctx, createBlogPost, arg.Title, arg.Slug, arg.Excerpt,
		arg.Content, arg.CoverImageUrl, arg.Published)
	return scanBlogPost(row)
}

const getBlogPost = `
SELECT ` + blogPostColumns + `
FROM blog_posts
WHERE id = $1
`

func (s *Store) GetBlogPost(ctx context.Context, id uuid.UUID) (BlogPost, error) {
	return scanBlogPost(s.db.QueryRow(ctx, getBlogPost, id))
}

const getBlogPostBySlug = `
SELECT ` + blogPostColumns + `
FROM blog_posts
WHERE slug = $1
`

func (s *Store) GetBlogPostBySlug(ctx context.Context, slug string) (BlogPost, error) {
	return scanBlogPost(s.db.QueryRow(ctx, getBlogPostBySlug, slug))
}

const listBlogPosts = `
SELECT ` + blogPostColumns + `
FROM blog_posts
WHERE (NOT $1::bool OR published)
ORDER BY created_at DESC
`

// ListBlogPosts returns posts newest first; publishedOnly hides drafts.
func (s *Store) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]BlogPost, error) {
	rows, err := s.db.Query(ctx, listBlogPosts, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		b, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, b)
	}
	return posts, rows.Err()
}

const updateBlogPost = `
UPDATE blog_posts
SET title = $2, slug = $3, excerpt = $4, content = $5, cover_image_url = $6,
	published = $7, updated_at = now()
WHERE id = $1
RETURNING ` + blogPostColumns

// UpdateBlogPostParams replaces every editable post field.
type UpdateBlogPostParams struct {
	ID            uuid.UUID
	Title         string
	Slug          string
	Excerpt       pgtype.Text
	Content       string
	CoverImageUrl pgtype.Text
	Published     bool
}

func (s *Store) UpdateBlogPost(ctx context.Context, arg UpdateBlogPostParams) (BlogPost, error) {
	row := s.db.QueryRow(ctx, updateBlogPost, arg.ID, arg.Title, arg.Slug,
		arg.Excerpt, arg.Content, arg.CoverImageUrl, arg.Published)
	return scanBlogPost(row)
}

const deleteBlogPost = `
DELETE FROM blog_posts
WHERE id = $1
`

func (s *Store) DeleteBlogPost(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, deleteBlogPost, id)
	return err
}
