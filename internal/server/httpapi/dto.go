package httpapi

import (
	"time"

	"github.com/dmitrijs2005/cms/internal/server/models"
)

type registerRequest struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	Username   string `json:"username" validate:"required,max=150"`
	Password   string `json:"password" validate:"required"`
	Password2  string `json:"password2" validate:"required,eqfield=Password"`
	FirstName  string `json:"first_name" validate:"max=150"`
	LastName   string `json:"last_name" validate:"max=150"`
	OtherName  string `json:"other_name" validate:"max=150"`
	Occupation string `json:"occupation" validate:"max=150"`
	Bio        string `json:"bio"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type articleRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Status  string `json:"status" validate:"omitempty,oneof=draft published archived review"`
}

// articlePatchRequest is the PATCH body; absent fields stay unchanged.
type articlePatchRequest struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content" validate:"omitempty,min=1"`
	Status  *string `json:"status" validate:"omitempty,oneof=draft published archived review"`
}

func (p articlePatchRequest) patch() models.ArticlePatch {
	out := models.ArticlePatch{Title: p.Title, Content: p.Content}
	if p.Status != nil {
		s := models.Status(*p.Status)
		out.Status = &s
	}
	return out
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

type userResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	OtherName  string `json:"other_name"`
	Occupation string `json:"occupation"`
	Bio        string `json:"bio"`
	IsVerified bool   `json:"is_verified"`
}

func toUser(u *models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		OtherName:  u.OtherName,
		Occupation: u.Occupation,
		Bio:        u.Bio,
		IsVerified: u.IsVerified,
	}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type articleResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toArticle(a *models.Article) articleResponse {
	return articleResponse{
		ID:        a.ID,
		Title:     a.Title,
		Slug:      a.Slug,
		AuthorID:  a.OwnerID,
		Content:   a.Content,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toArticles(in []*models.Article) []articleResponse {
	out := make([]articleResponse, 0, len(in))
	for _, a := range in {
		out = append(out, toArticle(a))
	}
	return out
}

type commentResponse struct {
	ID        string    `json:"id"`
	ArticleID string    `json:"article_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toComment(c *models.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		ArticleID: c.ArticleID,
		AuthorID:  c.OwnerID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toComments(in []*models.Comment) []commentResponse {
	out := make([]commentResponse, 0, len(in))
	for _, c := range in {
		out = append(out, toComment(c))
	}
	return out
}
