package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/mwalden2/inkwell/api/v1/database"
	"github.com/mwalden2/inkwell/api/v1/handlers"
	"github.com/mwalden2/inkwell/api/v1/middleware"
	"github.com/mwalden2/inkwell/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("failed to provision schema: %v", err)
	}

	store := database.NewStore(pool)

	authMiddleware := middleware.NewAuthMiddleware(store, cfg.JWTSecret)
	authHandler := handlers.NewAuthHandler(store, cfg.JWTSecret, cfg.AccessTokenTTL())
	userHandler := &handlers.UserHandler{Users: store, Articles: store}
	articleHandler := &handlers.ArticleHandler{Articles: store}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.HealthHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", articleHandler.GetArticles)
			r.Post("/", articleHandler.CreateArticle)
			r.Get("/{id}", articleHandler.GetArticle)
			r.Put("/{id}", articleHandler.UpdateArticle)
			// Article deletion is implemented but not exposed:
			// r.Delete("/{id}", articleHandler.DeleteArticle)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.GetUsers)
			r.Get("/{id}", userHandler.GetUser)
			r.Put("/{id}", userHandler.UpdateUser)
			r.Delete("/{id}", userHandler.DeleteUser)
			r.Get("/{id}/articles", userHandler.GetUserArticles)
		})
	})

	log.Printf("Starting server on port %s", cfg.Port)
	err = http.ListenAndServe(":"+cfg.Port, r)
	if err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
