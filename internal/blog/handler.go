package blog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/bloglist/internal/auth"
	"github.com/2beens/bloglist/internal/telemetry/metrics"
	"github.com/2beens/bloglist/pkg"
)

type blogRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
	// empty when the client did not send likes
	Likes json.RawMessage `json:"likes"`
}

func (req blogRequest) toBlog() (*Blog, error) {
	likes, err := parseLikes(req.Likes)
	if err != nil {
		return nil, err
	}
	return &Blog{
		Title:  req.Title,
		Author: req.Author,
		URL:    req.URL,
		Likes:  likes,
	}, nil
}

type blogRepo interface {
	All(ctx context.Context) ([]*Blog, error)
	Get(ctx context.Context, id string) (*Blog, error)
	Add(ctx context.Context, blog *Blog) error
	Update(ctx context.Context, blog *Blog) (*Blog, error)
	Delete(ctx context.Context, id string) error
}

type Handler struct {
	repo           blogRepo
	metricsManager *metrics.Manager
}

func NewBlogHandler(
	repo blogRepo,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/api/blogs", handler.handleAll).Methods("GET", "OPTIONS").Name("all-blogs")
	router.HandleFunc("/api/blogs", handler.handleNewBlog).Methods("POST", "OPTIONS").Name("new-blog")
	// before {id}, so "stats" is not taken for a blog id
	router.HandleFunc("/api/blogs/stats", handler.handleStats).Methods("GET", "OPTIONS").Name("blogs-stats")
	router.HandleFunc("/api/blogs/{id}", handler.handleGetBlog).Methods("GET", "OPTIONS").Name("get-blog")
	router.HandleFunc("/api/blogs/{id}", handler.handleUpdateBlog).Methods("PUT", "OPTIONS").Name("update-blog")
	router.HandleFunc("/api/blogs/{id}", handler.handleDeleteBlog).Methods("DELETE", "OPTIONS").Name("delete-blog")
}

// badRequest answers with a bare 400, the body stays empty.
func badRequest(w http.ResponseWriter) {
	w.WriteHeader(http.StatusBadRequest)
}

func blogIDFromPath(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrInvalidBlogID
	}
	return id, nil
}

func decodeBlogRequest(r *http.Request) (*Blog, error) {
	var req blogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	blog, err := req.toBlog()
	if err != nil {
		return nil, err
	}
	if err := blog.Validate(); err != nil {
		return nil, err
	}
	return blog, nil
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	allBlogs, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get all blogs error: %s", err)
		http.Error(w, "failed to get all blogs", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, allBlogs, http.StatusOK)
}

func (handler *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	allBlogs, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("blogs stats, get all blogs: %s", err)
		http.Error(w, "failed to get blogs stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, Summarize(allBlogs), http.StatusOK)
}

func (handler *Handler) handleGetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := blogIDFromPath(r)
	if err != nil {
		badRequest(w)
		return
	}

	blog, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBlogNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Errorf("get blog %s: %s", id, err)
		http.Error(w, "failed to get blog", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, blog, http.StatusOK)
}

func (handler *Handler) handleNewBlog(w http.ResponseWriter, r *http.Request) {
	newBlog, err := decodeBlogRequest(r)
	if err != nil {
		log.Tracef("new blog, invalid request: %s", err)
		badRequest(w)
		return
	}

	if session, ok := auth.SessionFromContext(r.Context()); ok {
		newBlog.User = &Owner{
			ID:       session.UserID,
			Username: session.Username,
			Name:     session.Name,
		}
	}

	if err := handler.repo.Add(r.Context(), newBlog); err != nil {
		if errors.Is(err, ErrUnknownOwner) {
			log.Warnf("add new blog: session user %s is gone", newBlog.User.ID)
			http.Error(w, "session user not found", http.StatusUnauthorized)
			return
		}
		log.Errorf("add new blog failed: %s", err)
		http.Error(w, "add new blog failed", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterBlogsCreated.Inc()
	}
	log.Tracef("new blog %s: [%s] added", newBlog.ID, newBlog.Title)

	pkg.WriteJSON(w, newBlog, http.StatusCreated)
}

func (handler *Handler) handleUpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := blogIDFromPath(r)
	if err != nil {
		badRequest(w)
		return
	}

	blog, err := decodeBlogRequest(r)
	if err != nil {
		log.Tracef("update blog %s, invalid request: %s", id, err)
		badRequest(w)
		return
	}
	blog.ID = id

	updated, err := handler.repo.Update(r.Context(), blog)
	if err != nil {
		if errors.Is(err, ErrBlogNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Errorf("update blog %s failed: %s", id, err)
		http.Error(w, "update blog failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, updated, http.StatusOK)
}

func (handler *Handler) handleDeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, err := blogIDFromPath(r)
	if err != nil {
		badRequest(w)
		return
	}

	err = handler.repo.Delete(r.Context(), id)
	switch {
	case errors.Is(err, ErrBlogNotFound):
		// deleting a missing blog is not an error
		log.Tracef("delete blog %s: already gone", id)
	case err != nil:
		log.Errorf("delete blog %s failed: %s", id, err)
		http.Error(w, "delete blog failed", http.StatusInternalServerError)
		return
	case handler.metricsManager != nil:
		handler.metricsManager.CounterBlogsDeleted.Inc()
	}

	w.WriteHeader(http.StatusNoContent)
}
