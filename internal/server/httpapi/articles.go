package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/cms/internal/server/models"
	"github.com/dmitrijs2005/cms/internal/server/services"
)

func (a *API) listArticles(w http.ResponseWriter, r *http.Request) {
	list, err := a.articles.List(r.Context(), ActorFrom(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, toArticles(list))
}

func (a *API) createArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !a.decodeWrite(w, r, &req) {
		return
	}
	article, err := a.articles.Create(r.Context(), ActorFrom(r.Context()), services.ArticleInput{
		Title:   req.Title,
		Content: req.Content,
		Status:  models.Status(req.Status),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusCreated, toArticle(article))
}

func (a *API) getArticle(w http.ResponseWriter, r *http.Request) {
	article, err := a.articles.Get(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "slug"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, toArticle(article))
}

// replaceArticle handles PUT: title and content are required, an omitted
// status keeps the current one.
func (a *API) replaceArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !a.decodeWrite(w, r, &req) {
		return
	}
	patch := models.ArticlePatch{Title: &req.Title, Content: &req.Content}
	if req.Status != "" {
		s := models.Status(req.Status)
		patch.Status = &s
	}
	a.update(w, r, patch)
}

func (a *API) patchArticle(w http.ResponseWriter, r *http.Request) {
	var req articlePatchRequest
	if !a.decodeWrite(w, r, &req) {
		return
	}
	a.update(w, r, req.patch())
}

func (a *API) update(w http.ResponseWriter, r *http.Request, patch models.ArticlePatch) {
	article, err := a.articles.Update(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "slug"), patch)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, toArticle(article))
}

func (a *API) deleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := a.articles.Delete(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "slug")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) searchArticles(w http.ResponseWriter, r *http.Request) {
	list, err := a.articles.Search(r.Context(), ActorFrom(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, toArticles(list))
}

func (a *API) searchByAuthor(w http.ResponseWriter, r *http.Request) {
	list, err := a.articles.SearchByAuthorEmail(r.Context(), ActorFrom(r.Context()), chi.URLParam(r, "email"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusOK, toArticles(list))
}
