package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/metrics"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

type ctxKey int

const actorKey ctxKey = iota

// ActorFrom returns the actor attached by the authentication middleware.
// Requests that never passed through it are anonymous.
func ActorFrom(ctx context.Context) models.Actor {
	if a, ok := ctx.Value(actorKey).(models.Actor); ok {
		return a
	}
	return models.Actor{}
}

func withActor(ctx context.Context, a models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// clientKey identifies the network origin of r for anonymous throttling.
func clientKey(r *http.Request) string {
	key, err := httprate.KeyByRealIP(r)
	if err != nil || key == "" {
		return r.RemoteAddr
	}
	return key
}

// authenticate resolves a bearer token into the request actor. Requests
// without one continue anonymously; a token that does not resolve is
// rejected outright.
func (a *API) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := clientKey(r)

		scheme, token, found := strings.Cut(r.Header.Get(common.AuthorizationHeaderName), " ")
		if !found || !strings.EqualFold(scheme, common.BearerScheme) {
			next.ServeHTTP(w, r.WithContext(withActor(ctx, models.Anonymous(key))))
			return
		}

		actor, err := a.resolver.Resolve(ctx, strings.TrimSpace(token))
		if err != nil {
			writeError(ctx, a.log, w, err)
			return
		}
		actor.ClientKey = key
		next.ServeHTTP(w, r.WithContext(withActor(ctx, actor)))
	})
}

// logRequests writes one log line and one metrics sample per request.
func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		metrics.RecordRequest(r.Method, route, status, elapsed)

		a.log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
