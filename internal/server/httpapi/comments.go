package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (a *API) listComments(w http.ResponseWriter, r *http.Request) {
	list, err := a.comments.List(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, toComments(list))
}

func (a *API) createComment(w http.ResponseWriter, r *http.Request) {
	if err := a.comments.AdmitCreate(r.Context(), ActorFrom(r.Context())); err != nil {
		a.fail(w, r, err)
		return
	}
	var req commentRequest
	if err := decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	c, err := a.comments.Create(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "slug"), req.Content)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusCreated, toComment(c))
}

func (a *API) getComment(w http.ResponseWriter, r *http.Request) {
	c, err := a.comments.Get(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "slug"), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, toComment(c))
}

// updateComment serves both PUT and PATCH; content is the only mutable field.
func (a *API) updateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !a.decodeWrite(w, r, &req) {
		return
	}
	c, err := a.comments.Update(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "slug"), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, toComment(c))
}

func (a *API) deleteComment(w http.ResponseWriter, r *http.Request) {
	err := a.comments.Delete(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "slug"), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
