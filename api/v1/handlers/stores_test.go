package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mwalden2/inkwell/api/v1/auth"
	"github.com/mwalden2/inkwell/api/v1/database"
	"github.com/mwalden2/inkwell/api/v1/middleware"
	"github.com/mwalden2/inkwell/api/v1/models"
)

// fakeStore is an in-memory stand-in for database.Store with the same error
// semantics, including the explicit article cascade on user deletion.
type fakeStore struct {
	users         map[int64]*models.User
	articles      map[int64]*models.Article
	nextUserID    int64
	nextArticleID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]*models.User{},
		articles: map[int64]*models.Article{},
	}
}

func (s *fakeStore) addUser(username, email, password string) *models.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	u := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: hash,
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (s *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return fmt.Errorf("%w: username '%s' is already taken", database.ErrUsernameExists, user.Username)
		}
		if u.Email == user.Email {
			return fmt.Errorf("%w: email '%s' is already registered", database.ErrEmailExists, user.Email)
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.IsActive = true
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *fakeStore) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID %d not found: %w", userID, database.ErrNoUser)
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user '%s' not found: %w", username, database.ErrNoUser)
}

func (s *fakeStore) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	users := []models.User{}
	for id := int64(1); id <= s.nextUserID; id++ {
		if u, ok := s.users[id]; ok {
			users = append(users, *u)
		}
	}
	return paginate(users, skip, limit), nil
}

func (s *fakeStore) UpdateUser(ctx context.Context, userID int64, patch *database.UserPatch) (*models.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID %d not found: %w", userID, database.ErrNoUser)
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.HashedPassword != nil {
		u.HashedPassword = *patch.HashedPassword
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) DeleteUser(ctx context.Context, userID int64) error {
	if _, ok := s.users[userID]; !ok {
		return fmt.Errorf("user with ID %d does not exist: %w", userID, database.ErrNoUser)
	}
	for id, a := range s.articles {
		if a.AuthorID == userID {
			delete(s.articles, id)
		}
	}
	delete(s.users, userID)
	return nil
}

func (s *fakeStore) CreateArticle(ctx context.Context, article *models.Article) error {
	s.nextArticleID++
	article.ID = s.nextArticleID
	stored := *article
	s.articles[article.ID] = &stored
	return nil
}

func (s *fakeStore) GetArticle(ctx context.Context, articleID int64) (*models.Article, error) {
	a, ok := s.articles[articleID]
	if !ok {
		return nil, fmt.Errorf("article with ID %d not found: %w", articleID, database.ErrNoArticle)
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) ListArticles(ctx context.Context, skip, limit int) ([]models.Article, error) {
	articles := []models.Article{}
	for id := int64(1); id <= s.nextArticleID; id++ {
		if a, ok := s.articles[id]; ok {
			articles = append(articles, *a)
		}
	}
	return paginate(articles, skip, limit), nil
}

func (s *fakeStore) ListArticlesByAuthor(ctx context.Context, authorID int64, skip, limit int) ([]models.Article, error) {
	articles := []models.Article{}
	for id := int64(1); id <= s.nextArticleID; id++ {
		if a, ok := s.articles[id]; ok && a.AuthorID == authorID {
			articles = append(articles, *a)
		}
	}
	return paginate(articles, skip, limit), nil
}

func (s *fakeStore) UpdateArticle(ctx context.Context, articleID int64, patch *database.ArticlePatch) (*models.Article, error) {
	a, ok := s.articles[articleID]
	if !ok {
		return nil, fmt.Errorf("article with ID %d not found: %w", articleID, database.ErrNoArticle)
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Content != nil {
		a.Content = *patch.Content
	}
	copied := *a
	return &copied, nil
}

func (s *fakeStore) DeleteArticle(ctx context.Context, articleID int64) error {
	if _, ok := s.articles[articleID]; !ok {
		return fmt.Errorf("article with ID %d does not exist: %w", articleID, database.ErrNoArticle)
	}
	delete(s.articles, articleID)
	return nil
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// asActor injects an authenticated user into every request, standing in for
// the auth middleware.
func asActor(actor *models.User, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
