package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pestaway/backoffice/internal/store"
)

type mockBlogStore struct {
	createBlogPostFn    func(ctx context.Context, arg store.CreateBlogPostParams) (store.BlogPost, error)
	getBlogPostFn       func(ctx context.Context, id uuid.UUID) (store.BlogPost, error)
	getBlogPostBySlugFn func(ctx context.Context, slug string) (store.BlogPost, error)
	listBlogPostsFn     func(ctx context.Context, publishedOnly bool) ([]store.BlogPost, error)
	updateBlogPostFn    func(ctx context.Context, arg store.UpdateBlogPostParams) (store.BlogPost, error)
	deleteBlogPostFn    func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBlogStore) CreateBlogPost(ctx context.Context, arg store.CreateBlogPostParams) (store.BlogPost, error) {
	return m.createBlogPostFn(ctx, arg)
}

func (m *mockBlogStore) GetBlogPost(ctx context.Context, id uuid.UUID) (store.BlogPost, error) {
	return m.getBlogPostFn(ctx, id)
}

func (m *mockBlogStore) GetBlogPostBySlug(ctx context.Context, slug string) (store.BlogPost, error) {
	return m.getBlogPostBySlugFn(ctx, slug)
}

func (m *mockBlogStore) ListBlogPosts(ctx context.Context, publishedOnly bool) ([]store.BlogPost, error) {
	return m.listBlogPostsFn(ctx, publishedOnly)
}

func (m *mockBlogStore) UpdateBlogPost(ctx context.Context, arg store.UpdateBlogPostParams) (store.BlogPost, error) {
	return m.updateBlogPostFn(ctx, arg)
}

func (m *mockBlogStore) DeleteBlogPost(ctx context.Context, id uuid.UUID) error {
	return m.deleteBlogPostFn(ctx, id)
}

func blogRouter(st BlogStore) http.Handler {
	r := chi.NewRouter()
	NewBlogHandler(st).RegisterRoutes(r)
	return r
}

func TestBlogCreate_DerivesSlugFromTitle(t *testing.T) {
	var got store.CreateBlogPostParams
	st := &mockBlogStore{
		createBlogPostFn: func(ctx context.Context, arg store.CreateBlogPostParams) (store.BlogPost, error) {
			got = arg
			return store.BlogPost{ID: uuid.New(), Title: arg.Title, Slug: arg.Slug, Content: arg.Content}, nil
		},
	}
	router := blogRouter(st)

	rr := doJSON(t, router, "POST", "/blog", blogPostRequest{
		Title:   "How to Keep Ants Out of Your Kitchen!",
		Content: "Seal entry points...",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if got.Slug != "how-to-keep-ants-out-of-your-kitchen" {
		t.Errorf("slug: got %q", got.Slug)
	}
}

func TestBlogCreate_ExplicitSlugWins(t *testing.T) {
	var got store.CreateBlogPostParams
	st := &mockBlogStore{
		createBlogPostFn: func(ctx context.Context, arg store.CreateBlogPostParams) (store.BlogPost, error) {
			got = arg
			return store.BlogPost{ID: uuid.New(), Slug: arg.Slug}, nil
		},
	}
	router := blogRouter(st)

	rr := doJSON(t, router, "POST", "/blog", blogPostRequest{
		Title:   "How to Keep Ants Out",
		Slug:    "ants-guide",
		Content: "Seal entry points...",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if got.Slug != "ants-guide" {
		t.Errorf("slug: got %q, want %q", got.Slug, "ants-guide")
	}
}

func TestBlogCreate_DuplicateSlugIs409(t *testing.T) {
	st := &mockBlogStore{
		createBlogPostFn: func(ctx context.Context, arg store.CreateBlogPostParams) (store.BlogPost, error) {
			return store.BlogPost{}, &pgconn.PgError{Code: "23505", ConstraintName: "blog_posts_slug_key"}
		},
	}
	router := blogRouter(st)

	rr := doJSON(t, router, "POST", "/blog", blogPostRequest{
		Title:   "How to Keep Ants Out",
		Content: "Seal entry points...",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestBlogGet_BySlug(t *testing.T) {
	post := store.BlogPost{ID: uuid.New(), Title: "Ants Guide", Slug: "ants-guide", Content: "..."}
	st := &mockBlogStore{
		getBlogPostBySlugFn: func(ctx context.Context, slug string) (store.BlogPost, error) {
			if slug != "ants-guide" {
				return store.BlogPost{}, pgx.ErrNoRows
			}
			return post, nil
		},
	}
	router := blogRouter(st)

	rr := doJSON(t, router, "GET", "/blog/ants-guide", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp blogPostResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Slug != "ants-guide" {
		t.Errorf("slug: got %q", resp.Slug)
	}
}

func TestBlogGet_ByID(t *testing.T) {
	post := store.BlogPost{ID: uuid.New(), Title: "Ants Guide", Slug: "ants-guide", Content: "..."}
	st := &mockBlogStore{
		getBlogPostFn: func(ctx context.Context, id uuid.UUID) (store.BlogPost, error) {
			if id != post.ID {
				return store.BlogPost{}, pgx.ErrNoRows
			}
			return post, nil
		},
	}
	router := blogRouter(st)

	rr := doJSON(t, router, "GET", "/blog/"+post.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d (%s)", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestBlogList_PublishedOnly(t *testing.T) {
	var gotPublishedOnly bool
	st := &mockBlogStore{
		listBlogPostsFn: func(ctx context.Context, publishedOnly bool) ([]store.BlogPost, error) {
			gotPublishedOnly = publishedOnly
			return nil, nil
		},
	}
	router := blogRouter(st)

	rr := doJSON(t, router, "GET", "/blog?published=true", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if !gotPublishedOnly {
		t.Error("published filter not forwarded")
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"How to Keep Ants Out", "how-to-keep-ants-out"},
		{"  Spaces  and -- dashes ", "spaces-and-dashes"},
		{"Already-a-slug", "already-a-slug"},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
