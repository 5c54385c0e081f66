package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/tdnguyen/novelnest/api"
	"github.com/tdnguyen/novelnest/auth"
	"github.com/tdnguyen/novelnest/datastore"
	rh "github.com/tdnguyen/novelnest/route-handlers"
	"github.com/tdnguyen/novelnest/storage"
)

const (
	defaultPort        = "8080"
	defaultDatabaseURL = "user=postgres password=password dbname=novelnest host=localhost port=5432 sslmode=disable"
	dbPingTimeout      = 5 * time.Second
	migrationTimeout   = 30 * time.Second
	shutdownTimeout    = 15 * time.Second
	dbMaxOpenConns     = 25
	dbMaxIdleConns     = 25
	dbConnMaxLifetime  = 5 * time.Minute
)

type config struct {
	port        string
	databaseURL string
	tokenSecret string
}

func main() {
	cfg := loadConfig()

	db, err := setupDatabase(cfg.databaseURL)
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}
	defer db.Close()

	migrationCtx, cancelMigration := context.WithTimeout(context.Background(), migrationTimeout)
	defer cancelMigration()
	if err := datastore.ApplyMigrations(migrationCtx, db); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}

	userRepo := datastore.NewUserRepository(db)
	bookRepo := datastore.NewBookRepository(db)
	chapterRepo := datastore.NewChapterRepository(db)
	genreRepo := datastore.NewGenreRepository(db)
	ratingRepo := datastore.NewRatingRepository(db)
	commentRepo := datastore.NewCommentRepository(db)
	statsRepo := datastore.NewStatsRepository(db)
	blobStore := storage.NewSQLBlobStore(db)

	authService := auth.NewService(userRepo, []byte(cfg.tokenSecret))

	authHandler := rh.NewAuthHandler(userRepo, authService)
	bookHandler := rh.NewBookHandler(bookRepo)
	chapterHandler := rh.NewChapterHandler(chapterRepo)
	ratingHandler := rh.NewRatingHandler(ratingRepo)
	commentHandler := rh.NewCommentHandler(commentRepo)
	genreHandler := rh.NewGenreHandler(genreRepo)
	statsHandler := rh.NewStatsHandler(statsRepo)
	imageHandler := rh.NewImageHandler(blobStore)
	adminHandler := rh.NewAdminHandler(bookRepo, userRepo, commentRepo)

	router := api.SetupRoutes(
		authHandler,
		bookHandler,
		chapterHandler,
		ratingHandler,
		commentHandler,
		genreHandler,
		statsHandler,
		imageHandler,
		adminHandler,
		api.NewAuthMiddleware(authService),
	)

	startServer(cfg.port, router)
}

func loadConfig() config {
	// A missing .env file is fine; environment variables still apply.
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		dbURL = defaultDatabaseURL
		log.Println("WARNING: DB_CONNECTION_STRING not set, using default local connection string.")
	}

	secret := os.Getenv("SECRET_KEY")
	if secret == "" {
		log.Fatal("SECRET_KEY must be set: it signs every access token")
	}

	return config{
		port:        port,
		databaseURL: dbURL,
		tokenSecret: secret,
	}
}

func setupDatabase(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		db.Close() // Close unusable connection pool
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection successful")
	return db, nil
}

func startServer(port string, router http.Handler) {
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	shutdownSignal := make(chan os.Signal, 1)
	signal.Notify(shutdownSignal, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownSignal // Block until signal received
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server gracefully stopped")
}
