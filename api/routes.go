package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	rh "github.com/tdnguyen/novelnest/route-handlers"
	"github.com/tdnguyen/novelnest/webutil"
)

const (
	paramID     = "id"
	paramNum    = "num"
	paramBookID = "book_id"
	paramFileID = "file_id"
)

// SetupRoutes builds the router: a public surface for browsing and
// signup/login, an authenticated group for reader and author actions,
// and an admin group behind the admin gate.
func SetupRoutes(
	authHandler *rh.AuthHandler,
	bookHandler *rh.BookHandler,
	chapterHandler *rh.ChapterHandler,
	ratingHandler *rh.RatingHandler,
	commentHandler *rh.CommentHandler,
	genreHandler *rh.GenreHandler,
	statsHandler *rh.StatsHandler,
	imageHandler *rh.ImageHandler,
	adminHandler *rh.AdminHandler,
	authMW *AuthMiddleware,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// --- Public routes ---
	r.Post("/signup", webutil.MakeHandler(authHandler.HandleSignup))
	r.Post("/login", webutil.MakeHandler(authHandler.HandleLogin))

	r.Route("/books", func(r chi.Router) {
		r.Get("/", webutil.MakeHandler(bookHandler.HandleListBooks))
		r.Route("/{"+paramID+"}", func(r chi.Router) {
			r.Get("/", webutil.MakeHandler(bookHandler.HandleGetBook))
			r.Get("/chapters/{"+paramNum+"}", webutil.MakeHandler(chapterHandler.HandleGetChapter))
		})
	})

	r.Get("/genres", webutil.MakeHandler(genreHandler.HandleGetGenres))
	r.Get("/ratings/{"+paramBookID+"}", webutil.MakeHandler(ratingHandler.HandleGetRatings))
	r.Get("/comments/{"+paramBookID+"}", webutil.MakeHandler(commentHandler.HandleGetBookComments))
	r.Get("/genre-stats", webutil.MakeHandler(statsHandler.HandleGenreStats))
	r.Get("/novel-stats", webutil.MakeHandler(statsHandler.HandleNovelStats))
	r.Get("/image/{"+paramFileID+"}", webutil.MakeHandler(imageHandler.HandleDownload))

	// --- Authenticated routes ---
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticator)

		r.Get("/user-info", webutil.MakeHandler(authHandler.HandleUserInfo))
		r.Post("/update-pen-name", webutil.MakeHandler(authHandler.HandleUpdatePenName))

		r.Post("/ratings", webutil.MakeHandler(ratingHandler.HandleAddRating))
		r.Post("/comments", webutil.MakeHandler(commentHandler.HandleAddComment))

		r.Post("/novels", webutil.MakeHandler(bookHandler.HandleSubmitBook))
		r.Post("/chapter", webutil.MakeHandler(chapterHandler.HandleAddChapter))
		r.Get("/author-books", webutil.MakeHandler(bookHandler.HandleAuthorBooks))
		r.Get("/history", webutil.MakeHandler(bookHandler.HandleSubmissionHistory))

		r.Post("/upload", webutil.MakeHandler(imageHandler.HandleUpload))
	})

	// --- Admin routes ---
	r.Group(func(r chi.Router) {
		r.Use(authMW.Authenticator)
		r.Use(AdminOnly)

		r.Get("/pending_books", webutil.MakeHandler(adminHandler.HandlePendingBooks))
		r.Post("/active-book", webutil.MakeHandler(adminHandler.HandleApproveBook))
		r.Post("/reject-book", webutil.MakeHandler(adminHandler.HandleRejectBook))
		r.Delete("/novel/{"+paramBookID+"}", webutil.MakeHandler(adminHandler.HandleDeleteBook))

		r.Get("/get-users", webutil.MakeHandler(adminHandler.HandleGetUsers))
		r.Post("/toggle-user-active", webutil.MakeHandler(adminHandler.HandleToggleUserActive))

		r.Get("/comments", webutil.MakeHandler(adminHandler.HandleGetAllComments))
		r.Post("/delete-comment", webutil.MakeHandler(adminHandler.HandleDeleteComment))
	})

	// Health check endpoint
	r.Get("/healthz", handleHealthCheck)

	return r
}

// handleHealthCheck responds to a health check request.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(webutil.HeaderContentType, webutil.ContentTypeTextPlainUTF8)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
