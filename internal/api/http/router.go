package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/lcmaths/practice-api/internal/attempt"
	"github.com/lcmaths/practice-api/internal/auth"
	"github.com/lcmaths/practice-api/internal/catalog"
	"github.com/lcmaths/practice-api/internal/evaluate"
)

type Deps struct {
	Env           string
	Auth          *auth.Store
	Catalog       *catalog.Store
	Attempts      *attempt.Store
	Evaluator     *evaluate.Evaluator
	AdminEmails   []string
	CORSOrigins   []string
	SecureCookies bool
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true, // session cookie
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not implemented")
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", HealthHandler(d.Env))
		api.Get("/me", MeHandler(d.Auth))
		api.Post("/register", RegisterHandler(d.Auth, d.AdminEmails, d.SecureCookies))
		api.Post("/login", LoginHandler(d.Auth, d.SecureCookies))
		api.Post("/logout", LogoutHandler(d.Auth, d.SecureCookies))

		api.Group(func(pr chi.Router) {
			pr.Use(auth.RequireUser(d.Auth))

			pr.Get("/topics", ListTopicsHandler(d.Catalog))
			pr.Get("/topic/{slug}", TopicDetailHandler(d.Catalog))
			pr.Get("/question/{id}", QuestionDetailHandler(d.Catalog, d.Attempts))
			pr.Post("/attempts", CreateAttemptHandler(d.Catalog, d.Attempts, d.Evaluator))

			pr.Group(func(ar chi.Router) {
				ar.Use(auth.RequireAdmin())
				ar.Get("/admin/topics", AdminListTopicsHandler(d.Catalog))
				ar.Post("/admin/topics", AdminCreateTopicHandler(d.Catalog))
				ar.Post("/admin/questions", AdminCreateQuestionHandler(d.Catalog))
			})
		})
	})

	return r
}
