package blog

import (
	"encoding/json"
	"errors"
	"math"
	"time"
)

var (
	ErrBlogNotFound       = errors.New("blog not found")
	ErrTitleOrURLMissing  = errors.New("blog title or url missing")
	ErrNegativeLikes      = errors.New("blog likes must not be negative")
	ErrInvalidLikes       = errors.New("blog likes must be a whole number")
	ErrInvalidBlogID      = errors.New("invalid blog id")
	ErrUnknownOwner       = errors.New("blog owner does not exist")
	ErrExportNotAnArray   = errors.New("blogs export must be a json array")
	ErrExportInvalidEntry = errors.New("blogs export contains an invalid entry")
)

// Owner is the public projection of the user who created a blog.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type Blog struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	URL       string    `json:"url"`
	Likes     int       `json:"likes"`
	User      *Owner    `json:"user,omitempty"`
	CreatedAt time.Time `json:"-"`
}

func (b *Blog) Validate() error {
	if b.Title == "" || b.URL == "" {
		return ErrTitleOrURLMissing
	}
	if b.Likes < 0 {
		return ErrNegativeLikes
	}
	return nil
}

// parseLikes reads a json likes value. Absent, null, false, "" and 0 are 0.
// Numbers must be whole and fit an int; anything else is ErrInvalidLikes.
func parseLikes(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, ErrInvalidLikes
	}

	switch v := value.(type) {
	case nil:
		return 0, nil
	case bool:
		if !v {
			return 0, nil
		}
	case string:
		if v == "" {
			return 0, nil
		}
	case float64:
		if v != math.Trunc(v) || v >= float64(math.MaxInt) || v < float64(math.MinInt) {
			return 0, ErrInvalidLikes
		}
		return int(v), nil
	}
	return 0, ErrInvalidLikes
}
