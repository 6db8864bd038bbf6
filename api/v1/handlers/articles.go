package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mwalden2/inkwell/api/v1/database"
	"github.com/mwalden2/inkwell/api/v1/middleware"
	"github.com/mwalden2/inkwell/api/v1/models"
	"github.com/mwalden2/inkwell/api/v1/policy"
)

// ArticleStore is the persistence surface the article handlers need.
type ArticleStore interface {
	CreateArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, articleID int64) (*models.Article, error)
	ListArticles(ctx context.Context, skip, limit int) ([]models.Article, error)
	ListArticlesByAuthor(ctx context.Context, authorID int64, skip, limit int) ([]models.Article, error)
	UpdateArticle(ctx context.Context, articleID int64, patch *database.ArticlePatch) (*models.Article, error)
	DeleteArticle(ctx context.Context, articleID int64) error
}

type ArticleHandler struct {
	Articles ArticleStore
}

// GetArticles lists articles with offset/limit
func (h *ArticleHandler) GetArticles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	skip, limit := parsePagination(r)

	articles, err := h.Articles.ListArticles(r.Context(), skip, limit)
	if err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(articles)
}

// GetArticle retrieves a single article by ID
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	articleID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid article ID", http.StatusBadRequest)
		return
	}

	article, err := h.Articles.GetArticle(r.Context(), articleID)
	if err != nil {
		switch {
		case database.IsArticleNotFoundError(err):
			SendError(w, "Article not found", http.StatusNotFound)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(article)
}

// CreateArticle creates an article owned by the authenticated actor.
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var req models.ArticleCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		SendError(w, "title is required", http.StatusBadRequest)
		return
	}

	article := &models.Article{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: actor.ID,
	}

	if err := h.Articles.CreateArticle(r.Context(), article); err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(article)
}

// UpdateArticle applies a merge-patch to an article. Only the author may
// update it.
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	articleID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid article ID", http.StatusBadRequest)
		return
	}

	article, err := h.Articles.GetArticle(r.Context(), articleID)
	if err != nil {
		switch {
		case database.IsArticleNotFoundError(err):
			SendError(w, "Article not found", http.StatusNotFound)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	if !policy.Allow(actor.ID, article.AuthorID, policy.KindArticle, policy.ActionUpdate) {
		SendError(w, "Not enough permissions", http.StatusForbidden)
		return
	}

	var req models.ArticleUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		SendError(w, "title cannot be empty", http.StatusBadRequest)
		return
	}

	patch := &database.ArticlePatch{
		Title:   req.Title,
		Content: req.Content,
	}

	updated, err := h.Articles.UpdateArticle(r.Context(), articleID, patch)
	if err != nil {
		switch {
		case database.IsArticleNotFoundError(err):
			SendError(w, "Article not found", http.StatusNotFound)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(updated)
}

// DeleteArticle removes an article. Only the author may delete it. The
// handler is not mounted on the router; the external surface does not expose
// article deletion yet.
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	actor, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	articleID, err := parseIDParam(r)
	if err != nil {
		SendError(w, "Invalid article ID", http.StatusBadRequest)
		return
	}

	article, err := h.Articles.GetArticle(r.Context(), articleID)
	if err != nil {
		switch {
		case database.IsArticleNotFoundError(err):
			SendError(w, "Article not found", http.StatusNotFound)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	if !policy.Allow(actor.ID, article.AuthorID, policy.KindArticle, policy.ActionDelete) {
		SendError(w, "Not enough permissions", http.StatusForbidden)
		return
	}

	if err := h.Articles.DeleteArticle(r.Context(), articleID); err != nil {
		switch {
		case database.IsArticleNotFoundError(err):
			SendError(w, "Article not found", http.StatusNotFound)
		default:
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
