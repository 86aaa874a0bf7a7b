package geocode

import (
	"log"
	"net/http"
	"os"

	"github.com/CommonsAtlas/CA-Backend/internal/db"
	"github.com/CommonsAtlas/CA-Backend/internal/importer"
	"github.com/CommonsAtlas/CA-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

var (
	pipeline *importer.Pipeline
	cache    *Cache
)

// Init wires the geocode package's pipeline and cache from the environment.
// Must run after db.Connect.
func Init() {
	cfg := importer.LoadFromEnv()
	pipeline = importer.NewPipeline(cfg, db.DB)

	var err error
	cache, err = NewCache(cfg.RedisURL)
	if err != nil {
		log.Printf("[geocode] cache disabled: %v", err)
		cache = nil
	}
	if cache != nil {
		log.Println("[geocode] redis cache enabled")
	}
}

// SetupRoutes returns the geocode router: the public reverse endpoint plus
// the token-guarded admin import API.
func SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit())
		r.Get("/reverse", ReverseHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminTokenMiddleware(os.Getenv("ADMIN_TOKEN_HASH")))
		r.Post("/admin/import", StartImport)
		r.Get("/admin/import/{jobID}", GetImportStatus)
		r.Get("/admin/progress", ListProgress)
	})

	return r
}
