package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/server/metrics"
	"github.com/dmitrijs2005/cms/internal/server/services"
	"github.com/dmitrijs2005/cms/internal/server/verification"
)

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	if err := a.users.AdmitRegister(r.Context(), ActorFrom(r.Context())); err != nil {
		a.fail(w, r, err)
		return
	}
	var req registerRequest
	if err := decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}

	user, err := a.users.Register(r.Context(), services.RegisterInput{
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		OtherName:  req.OtherName,
		Occupation: req.Occupation,
		Bio:        req.Bio,
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		err = fieldError("email", "A user with this email already exists.")
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.respond(w, r, http.StatusCreated, toUser(user))
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeLogin(w, r)
	if !ok {
		return
	}
	user, token, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, credentialsError(err))
		return
	}
	a.respond(w, r, http.StatusOK, loginResponse{Token: token, User: toUser(user)})
}

func (a *API) token(w http.ResponseWriter, r *http.Request) {
	req, ok := a.decodeLogin(w, r)
	if !ok {
		return
	}
	_, token, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(w, r, credentialsError(err))
		return
	}
	a.respond(w, r, http.StatusOK, tokenResponse{Token: token})
}

// decodeLogin admits a login attempt and then reads its credentials.
func (a *API) decodeLogin(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	var req loginRequest
	if err := a.users.AdmitLogin(r.Context(), ActorFrom(r.Context())); err != nil {
		a.fail(w, r, err)
		return req, false
	}
	if err := decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return req, false
	}
	return req, true
}

// credentialsError reports rejected credentials as a payload error rather
// than a missing authentication.
func credentialsError(err error) error {
	if errors.Is(err, common.ErrorUnauthorized) {
		return fieldError("non_field_errors", "Unable to log in with provided credentials.")
	}
	return err
}

func (a *API) verify(w http.ResponseWriter, r *http.Request) {
	res, err := a.users.VerifyEmail(r.Context(), chi.URLParam(r, "user_id"), chi.URLParam(r, "token"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	metrics.RecordVerification(res.String())

	switch res {
	case verification.Verified:
		a.respond(w, r, http.StatusOK, detail{Detail: "Email verified."})
	case verification.AlreadyVerified:
		a.respond(w, r, http.StatusOK, detail{Detail: "Email already verified."})
	default:
		a.fail(w, r, common.ErrInvalidOrExpired)
	}
}
