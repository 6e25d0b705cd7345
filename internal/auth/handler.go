package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/bloglist/internal/telemetry/metrics"
	"github.com/2beens/bloglist/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=auth_test

type loginService interface {
	Login(ctx context.Context, creds Credentials, createdAt time.Time) (*Session, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type LogoutResponse struct {
	LoggedOut bool `json:"loggedOut"`
}

type Handler struct {
	service        loginService
	metricsManager *metrics.Manager
}

func NewHandler(service loginService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	router.HandleFunc("/api/logout", handler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Tracef("login, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "invalid json body", http.StatusBadRequest)
		return
	}

	session, err := handler.service.Login(r.Context(), creds, time.Now())
	switch {
	case errors.Is(err, ErrMissingCreds):
		handler.countLogin("bad_request")
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, ErrWrongPassword):
		handler.countLogin("wrong_password")
		log.Tracef("failed login attempt for [%s]", creds.Username)
		pkg.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
		return
	case err != nil:
		handler.countLogin("error")
		log.Errorf("login [%s]: %s", creds.Username, err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	handler.countLogin("ok")
	pkg.WriteJSON(w, LoginResponse{
		Token:    session.Token,
		Username: session.Username,
		Name:     session.Name,
	}, http.StatusOK)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	session, ok := SessionFromContext(r.Context())
	if !ok {
		pkg.WriteJSONError(w, "not logged in", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.service.Logout(r.Context(), session.Token)
	if err != nil {
		log.Errorf("logout [%s]: %s", session.Username, err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, LogoutResponse{LoggedOut: loggedOut}, http.StatusOK)
}

func (handler *Handler) countLogin(result string) {
	if handler.metricsManager == nil {
		return
	}
	handler.metricsManager.CounterLogins.WithLabelValues(result).Inc()
}
