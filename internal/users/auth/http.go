// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/constants"
	requestutil "github.com/taibuivan/agentdesk/internal/platform/request"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
	"github.com/taibuivan/agentdesk/internal/platform/validate"
)

// # Definitions & Constructors

// CookieSettings describes the session cookie the handler issues.
type CookieSettings struct {
	Name   string
	Secure bool
}

// Handler implements the /api/auth endpoints.
//
// # Scope
//
// It is the only place that issues or clears the session cookie. Every other
// route reads that cookie through the [Resolver].
type Handler struct {
	authService *Service
	cookie      CookieSettings
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service, cookie CookieSettings) *Handler {
	if cookie.Name == "" {
		cookie.Name = constants.DefaultSessionCookieName
	}
	return &Handler{authService: service, cookie: cookie}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /sign-up/email   : Creates an account and signs it in.
//   - POST /sign-in/email   : Verifies credentials and issues a session.
//   - POST /sign-out        : Destroys the current session.
//   - GET  /get-session     : Returns the current session, sliding its expiry.
//   - POST /revoke-sessions : Signs the caller out everywhere.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/sign-up/email", handler.signUp)
	router.Post("/sign-in/email", handler.signIn)
	router.Post("/sign-out", handler.signOut)
	router.Get("/get-session", handler.getSession)
	router.Post("/revoke-sessions", handler.revokeSessions)

	return router
}

// # Request Payloads

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Session *Session `json:"session"`
	User    *User    `json:"user"`
}

/*
SignUp handles the creation of a new account.

POST /api/auth/sign-up/email

Request:
  - Body: signUpRequest (Email, Password, Name)

Response:
  - 201: sessionResponse, with the session cookie set
  - 400: Validation failure
  - 409: Email already exists
*/
func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	var input signUpRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Custom(FieldPassword, len(input.Password) > MaxPasswordLength, "Password is too long").
		MaxLen(FieldName, input.Name, MaxNameLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	signedIn, err := handler.authService.SignUp(request.Context(), SignUpInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
	}, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, signedIn.Token, signedIn.Session.ExpiresAt)
	respond.Created(writer, sessionResponse{Session: signedIn.Session, User: signedIn.User})
}

/*
SignIn authenticates an account and establishes a session.

POST /api/auth/sign-in/email

Request:
  - Body: signInRequest (Email, Password)

Response:
  - 200: sessionResponse, with the session cookie set
  - 401: Invalid credentials
*/
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	var input signInRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	signedIn, err := handler.authService.SignIn(request.Context(), input.Email, input.Password, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, signedIn.Token, signedIn.Session.ExpiresAt)
	respond.OK(writer, sessionResponse{Session: signedIn.Session, User: signedIn.User})
}

/*
SignOut terminates the current session.

POST /api/auth/sign-out

Response:
  - 204: Session destroyed (or already absent) and cookie cleared
*/
func (handler *Handler) signOut(writer http.ResponseWriter, request *http.Request) {
	token := TokenFromHeader(request.Header, handler.cookie.Name)

	if err := handler.authService.SignOut(request.Context(), token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookie(writer)
	respond.NoContent(writer)
}

/*
GetSession returns the caller's live session.

GET /api/auth/get-session

Response:
  - 200: sessionResponse, or null data when anonymous
*/
func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	token := TokenFromHeader(request.Header, handler.cookie.Name)

	session, user, err := handler.authService.CurrentSession(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if session == nil {
		respond.OK(writer, nil)
		return
	}

	respond.OK(writer, sessionResponse{Session: session, User: user})
}

/*
RevokeSessions signs the caller out on every device.

POST /api/auth/revoke-sessions

Response:
  - 204: All sessions destroyed and cookie cleared
  - 401: No live session
*/
func (handler *Handler) revokeSessions(writer http.ResponseWriter, request *http.Request) {
	token := TokenFromHeader(request.Header, handler.cookie.Name)

	session, _, err := handler.authService.CurrentSession(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	if session == nil {
		respond.Error(writer, request, apperr.Unauthorized("Unauthorized"))
		return
	}

	if err := handler.authService.RevokeAll(request.Context(), session.UserID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookie(writer)
	respond.NoContent(writer)
}

// # Cookies

func (handler *Handler) setSessionCookie(writer http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     handler.cookie.Name,
		Value:    token,
		Path:     constants.SessionCookiePath,
		Expires:  expiresAt,
		Secure:   handler.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     handler.cookie.Name,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   handler.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientInfo captures the origin address and client descriptor of a request.
func clientInfo(request *http.Request) ClientInfo {
	return ClientInfo{IPAddress: requestutil.ClientIP(request), UserAgent: request.UserAgent()}
}
