// Package httpapi exposes the content services over HTTP under /v1/.
// Requests pass through bearer authentication before reaching a handler;
// handlers translate service errors to statuses in one place.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/logging"
	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/services"
)

// TokenResolver turns a bearer token into an authenticated actor.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (models.Actor, error)
}

type API struct {
	articles *services.ArticleService
	comments *services.CommentService
	users    *services.UserService
	resolver TokenResolver
	log      logging.Logger
}

func NewAPI(a *services.ArticleService, c *services.CommentService, u *services.UserService, resolver TokenResolver, log logging.Logger) *API {
	return &API{
		articles: a,
		comments: c,
		users:    u,
		resolver: resolver,
		log:      log.With("module", "http"),
	}
}

// Routes builds the router.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(a.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), a.log, w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(a.authenticate)

		r.Post("/user/create/", a.register)
		r.Post("/auth/login/", a.login)
		r.Post("/auth/token/", a.token)
		r.Get("/auth/verify/{user_id}/{token}/", a.verify)

		r.Route("/articles", func(r chi.Router) {
			r.Get("/", a.listArticles)
			r.Post("/", a.createArticle)
			r.Get("/search/", a.searchArticles)
			r.Get("/search/{email}/", a.searchByAuthor)

			r.Route("/{slug}", func(r chi.Router) {
				r.Get("/", a.getArticle)
				r.Put("/", a.replaceArticle)
				r.Patch("/", a.patchArticle)
				r.Delete("/", a.deleteArticle)

				r.Get("/comments/", a.listComments)
				r.Post("/comments/", a.createComment)
				r.Get("/comments/{id}/", a.getComment)
				r.Put("/comments/{id}/", a.updateComment)
				r.Patch("/comments/{id}/", a.updateComment)
				r.Delete("/comments/{id}/", a.deleteComment)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), a.log, w, http.StatusNotFound, detail{Detail: "Not found."})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), a.log, w, http.StatusMethodNotAllowed, detail{Detail: "Method not allowed."})
	})

	return r
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(r.Context(), a.log, w, err)
}

func (a *API) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	writeJSON(r.Context(), a.log, w, status, v)
}

// decodeWrite decodes the body of a write request. Anonymous actors can
// never write, so they are refused before their payload is examined.
func (a *API) decodeWrite(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !ActorFrom(r.Context()).IsAuthenticated {
		a.fail(w, r, common.ErrorUnauthorized)
		return false
	}
	if err := decode(w, r, dst); err != nil {
		a.fail(w, r, err)
		return false
	}
	return true
}
