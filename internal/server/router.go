// Package server wires the HTTP surface: middleware chain, session
// verification, and the route table.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/adelmas/galerie/auth"
	"github.com/adelmas/galerie/httpx"
	"github.com/adelmas/galerie/internal/config"
	"github.com/adelmas/galerie/internal/handlers"
	"github.com/adelmas/galerie/internal/policy"
	"github.com/adelmas/galerie/internal/storage"
	"github.com/adelmas/galerie/internal/store"
)

// New builds the application router over an open database handle.
func New(cfg config.Config, gdb *gorm.DB) http.Handler {
	files := storage.NewDisk(cfg.UploadDir, cfg.PublicPrefix)

	users := store.NewUsers(gdb)
	media := store.NewMedia(gdb, files)
	albums := store.NewAlbums(gdb, files)
	carousels := store.NewCarousels(gdb)
	logs := store.NewLogs(gdb)

	// Sessions carry role in the token; the verifier cuts off deleted and
	// banned accounts before token expiry.
	auth.SetUserVerifier(func(_ context.Context, userID string) bool {
		u, err := users.GetByID(userID)
		return err == nil && !u.IsBanned()
	})

	authH := handlers.NewAuthHandler(users)
	userH := handlers.NewUserHandler(users, logs)
	mediaH := handlers.NewMediaHandler(media, logs)
	albumH := handlers.NewAlbumHandler(albums, media, logs)
	carouselH := handlers.NewCarouselHandler(carousels, logs)
	logH := handlers.NewLogHandler(logs)
	uploadH := handlers.NewUploadHandler(files, media, albums, users, logs, cfg.MaxUploadBytes)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(auth.Middleware)

	r.Get("/health", health(gdb))
	r.Get("/healthz", health(gdb))

	r.Post("/auth/login", authH.Login)
	r.Post("/auth/logout", authH.Logout)

	// Everything below requires a live session.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/auth/session", authH.Session)

		r.Get("/users", userH.Get)
		r.Post("/users", userH.Create)
		r.Put("/users", userH.Update)
		r.Delete("/users", userH.Delete)

		r.Post("/logs", logH.Create)
		r.Post("/uploads", uploadH.Post)

		// Content management is reserved to admins and superadmins.
		r.Group(func(r chi.Router) {
			r.Use(policy.RequireManager())

			r.Get("/media", mediaH.Get)
			r.Post("/media", mediaH.Create)
			r.Put("/media", mediaH.Update)
			r.Delete("/media", mediaH.Delete)

			r.Get("/albums", albumH.Get)
			r.Post("/albums", albumH.Create)
			r.Put("/albums", albumH.Update)
			r.Delete("/albums", albumH.Delete)
			r.Get("/albums/files", albumH.Files)
			r.Delete("/albums/file", albumH.DeleteFile)

			r.Get("/carousels", carouselH.Get)
			r.Post("/carousels", carouselH.Create)
			r.Put("/carousels", carouselH.Update)
			r.Delete("/carousels", carouselH.Delete)

			r.Get("/logs", logH.Get)
		})
	})

	// Uploaded files are served as static content.
	fs := http.StripPrefix(cfg.PublicPrefix+"/", http.FileServer(http.Dir(cfg.UploadDir)))
	r.Get(cfg.PublicPrefix+"/*", fs.ServeHTTP)

	return r
}

func health(gdb *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sqlDB, err := gdb.DB()
		if err != nil || sqlDB.PingContext(r.Context()) != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "database_unreachable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
