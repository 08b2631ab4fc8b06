package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pestaway/backoffice/internal/store"
)

// BlogStore defines the database methods needed by blog handlers.
// Satisfied by *store.Store.
type BlogStore interface {
	CreateBlogPost(ctx context.Context, arg store.CreateBlogPostParams) (store.BlogPost, error)
	GetBlogPost(ctx context.Context, id uuid.UUID) (store.BlogPost, error)
	GetBlogPostBySlug(ctx context.Context, slug string) (store.BlogPost, error)
	ListBlogPosts(ctx context.Context, publishedOnly bool) ([]store.BlogPost, error)
	UpdateBlogPost(ctx context.Context, arg store.UpdateBlogPostParams) (store.BlogPost, error)
	DeleteBlogPost(ctx context.Context, id uuid.UUID) error
}

// BlogHandler handles blog post endpoints.
type BlogHandler struct {
	store BlogStore
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(store BlogStore) *BlogHandler {
	return &BlogHandler{store: store}
}

// RegisterRoutes registers blog endpoints on the given Chi router.
func (h *BlogHandler) RegisterRoutes(r chi.Router) {
	r.Route("/blog", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// --- Request / Response types ---

type blogPostRequest struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Excerpt       string `json:"excerpt"`
	Content       string `json:"content"`
	CoverImageURL string `json:"cover_image_url"`
	Published     bool   `json:"published"`
}

type blogPostResponse struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt,omitempty"`
	Content       string    `json:"content"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toBlogPostResponse(b store.BlogPost) blogPostResponse {
	return blogPostResponse{
		ID:            b.ID,
		Title:         b.Title,
		Slug:          b.Slug,
		Excerpt:       b.Excerpt.String,
		Content:       b.Content,
		CoverImageURL: b.CoverImageUrl.String,
		Published:     b.Published,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// --- Handlers ---

// List returns posts newest first. ?published=true hides drafts.
func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	publishedOnly := r.URL.Query().Get("published") == "true"

	posts, err := h.store.ListBlogPosts(r.Context(), publishedOnly)
	if err != nil {
		log.Printf("ERROR: failed to list blog posts: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]blogPostResponse, 0, len(posts))
	for _, b := range posts {
		resp = append(resp, toBlogPostResponse(b))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single post by id, or by slug when the param is not a UUID.
func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "id")

	var post store.BlogPost
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		post, err = h.store.GetBlogPost(r.Context(), id)
	} else {
		post, err = h.store.GetBlogPostBySlug(r.Context(), param)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
			return
		}
		log.Printf("ERROR: failed to get blog post: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toBlogPostResponse(post))
}

// Create creates a post. An empty slug is derived from the title.
func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req blogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and content are required"})
		return
	}
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Title)
	}
	if slug == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "slug is required"})
		return
	}

	post, err := h.store.CreateBlogPost(r.Context(), store.CreateBlogPostParams{
		Title:         req.Title,
		Slug:          slug,
		Excerpt:       textOrNull(req.Excerpt),
		Content:       req.Content,
		CoverImageUrl: textOrNull(req.CoverImageURL),
		Published:     req.Published,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a post with this slug already exists"})
			return
		}
		log.Printf("ERROR: failed to create blog post: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toBlogPostResponse(post))
}

// Update replaces a post's editable fields.
func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req blogPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and content are required"})
		return
	}
	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Title)
	}

	post, err := h.store.UpdateBlogPost(r.Context(), store.UpdateBlogPostParams{
		ID:            id,
		Title:         req.Title,
		Slug:          slug,
		Excerpt:       textOrNull(req.Excerpt),
		Content:       req.Content,
		CoverImageUrl: textOrNull(req.CoverImageURL),
		Published:     req.Published,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
			return
		}
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "a post with this slug already exists"})
			return
		}
		log.Printf("ERROR: failed to update blog post: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toBlogPostResponse(post))
}

// Delete removes a post.
func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetBlogPost(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
			return
		}
		log.Printf("ERROR: failed to get blog post: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.store.DeleteBlogPost(r.Context(), id); err != nil {
		log.Printf("ERROR: failed to delete blog post: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases the title and collapses everything except letters and
// digits into single hyphens.
func slugify(title string) string {
	s := strings.ToLower(title)
	s = slugInvalid.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
