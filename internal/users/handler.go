package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/bloglist/internal/telemetry/metrics"
	"github.com/2beens/bloglist/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=users_mocks_test.go -package=users_test

type userRepo interface {
	Add(ctx context.Context, user *User) error
	All(ctx context.Context) ([]*User, error)
}

type Handler struct {
	repo           userRepo
	metricsManager *metrics.Manager
	// injectable so tests don't pay the bcrypt cost
	passwordHasher func(password string) (string, error)
}

func NewHandler(repo userRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
		passwordHasher: pkg.HashPassword,
	}
}

func (handler *Handler) WithPasswordHasher(hasher func(password string) (string, error)) *Handler {
	handler.passwordHasher = hasher
	return handler
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/users", handler.HandleAll).Methods("GET", "OPTIONS").Name("all-users")
	router.HandleFunc("/api/users", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-user")
}

func (handler *Handler) HandleAll(w http.ResponseWriter, r *http.Request) {
	allUsers, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get all users: %s", err)
		http.Error(w, "failed to get users", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, allUsers, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req NewUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new user, unmarshal json: %s", err)
		pkg.WriteJSONError(w, "invalid json body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	passwordHash, err := handler.passwordHasher(req.Password)
	if err != nil {
		log.Errorf("new user, hash password: %s", err)
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	user := &User{
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: passwordHash,
	}
	if err := handler.repo.Add(r.Context(), user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			pkg.WriteJSONError(w, ErrUsernameTaken.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("new user, add: %s", err)
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	if user.Blogs == nil {
		user.Blogs = []*BlogRef{}
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterUsersRegistered.Inc()
	}
	log.Tracef("new user [%s] created: %s", user.Username, user.ID)

	pkg.WriteJSON(w, user, http.StatusCreated)
}
