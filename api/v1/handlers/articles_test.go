package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mwalden2/inkwell/api/v1/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArticleRouter(store *fakeStore, actor *models.User) http.Handler {
	h := &ArticleHandler{Articles: store}
	r := chi.NewRouter()
	r.Get("/articles", h.GetArticles)
	r.Post("/articles", h.CreateArticle)
	r.Get("/articles/{id}", h.GetArticle)
	r.Put("/articles/{id}", h.UpdateArticle)
	r.Delete("/articles/{id}", h.DeleteArticle)
	return asActor(actor, r)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestCreateArticle(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	actor := store.addUser("alice", "alice@x.com", "password1")
	r := newArticleRouter(store, actor)

	req := httptest.NewRequest(http.MethodPost, "/articles", jsonBody(t, models.ArticleCreate{Title: "T", Content: "C"}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "T", created.Title)
	assert.Equal(t, "C", created.Content)
	assert.Equal(t, actor.ID, created.AuthorID)
}

func TestCreateArticle_MissingTitle(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	actor := store.addUser("alice", "alice@x.com", "password1")
	r := newArticleRouter(store, actor)

	req := httptest.NewRequest(http.MethodPost, "/articles", jsonBody(t, models.ArticleCreate{Content: "C"}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.articles)
}

func TestGetArticle_NotFound(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	actor := store.addUser("alice", "alice@x.com", "password1")
	r := newArticleRouter(store, actor)

	req := httptest.NewRequest(http.MethodGet, "/articles/42", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateArticle_OwnerMergePatch(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	actor := store.addUser("alice", "alice@x.com", "password1")
	article := &models.Article{Title: "T", Content: "C", AuthorID: actor.ID}
	require.NoError(t, store.CreateArticle(context.Background(), article))

	r := newArticleRouter(store, actor)

	// patch only the title; content must stay untouched
	title := "T2"
	req := httptest.NewRequest(http.MethodPut, "/articles/1", jsonBody(t, models.ArticleUpdate{Title: &title}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "T2", updated.Title)
	assert.Equal(t, "C", updated.Content)
	assert.Equal(t, actor.ID, updated.AuthorID)
}

func TestUpdateArticle_NotOwner(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	owner := store.addUser("alice", "alice@x.com", "password1")
	other := store.addUser("bob", "bob@x.com", "password1")
	article := &models.Article{Title: "T", Content: "C", AuthorID: owner.ID}
	require.NoError(t, store.CreateArticle(context.Background(), article))

	r := newArticleRouter(store, other)

	title := "stolen"
	req := httptest.NewRequest(http.MethodPut, "/articles/1", jsonBody(t, models.ArticleUpdate{Title: &title}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := store.GetArticle(req.Context(), article.ID)
	require.NoError(t, err)
	assert.Equal(t, "T", stored.Title)
}

func TestUpdateArticle_NotFound(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	actor := store.addUser("alice", "alice@x.com", "password1")
	r := newArticleRouter(store, actor)

	title := "T2"
	req := httptest.NewRequest(http.MethodPut, "/articles/7", jsonBody(t, models.ArticleUpdate{Title: &title}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteArticle_OwnerOnly(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	owner := store.addUser("alice", "alice@x.com", "password1")
	other := store.addUser("bob", "bob@x.com", "password1")
	article := &models.Article{Title: "T", Content: "C", AuthorID: owner.ID}
	require.NoError(t, store.CreateArticle(context.Background(), article))

	rec := httptest.NewRecorder()
	newArticleRouter(store, other).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/articles/1", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	newArticleRouter(store, owner).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/articles/1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.articles)
}

func TestGetArticles_List(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	actor := store.addUser("alice", "alice@x.com", "password1")
	for _, title := range []string{"a", "b", "c"} {
		require.NoError(t, store.CreateArticle(context.Background(), &models.Article{Title: title, AuthorID: actor.ID}))
	}

	r := newArticleRouter(store, actor)

	req := httptest.NewRequest(http.MethodGet, "/articles?skip=1&limit=1", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var articles []models.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "b", articles[0].Title)
}
