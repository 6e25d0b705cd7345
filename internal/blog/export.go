package blog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type exportEntry struct {
	ID      string          `json:"id"`
	MongoID string          `json:"_id"`
	Title   string          `json:"title"`
	Author  string          `json:"author"`
	URL     string          `json:"url"`
	Likes   json.RawMessage `json:"likes"`
	User    json.RawMessage `json:"user"`
}

// DecodeExport reads a json array of blogs as exported by the API or by
// older tooling (using "_id" instead of "id"). Likes that are missing,
// null, not numbers, not whole numbers or out of int range count as 0.
func DecodeExport(r io.Reader) ([]*Blog, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrExportNotAnArray
		}
		return nil, fmt.Errorf("decode blogs export: %w", err)
	}

	blogs := make([]*Blog, 0, len(raw))
	for i, entryBytes := range raw {
		var entry exportEntry
		if err := json.Unmarshal(entryBytes, &entry); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %s", ErrExportInvalidEntry, i, err)
		}

		id := entry.ID
		if id == "" {
			id = entry.MongoID
		}

		blogs = append(blogs, &Blog{
			ID:     id,
			Title:  entry.Title,
			Author: entry.Author,
			URL:    entry.URL,
			Likes:  exportLikes(entry.Likes),
			User:   exportOwner(entry.User),
		})
	}

	return blogs, nil
}

func exportLikes(raw json.RawMessage) int {
	likes, err := parseLikes(raw)
	if err != nil {
		return 0
	}
	return likes
}

// exportOwner accepts both the populated owner object and a bare user id.
func exportOwner(raw json.RawMessage) *Owner {
	if len(raw) == 0 {
		return nil
	}
	var owner Owner
	if err := json.Unmarshal(raw, &owner); err == nil && owner.ID != "" {
		return &owner
	}
	var userID string
	if err := json.Unmarshal(raw, &userID); err == nil && userID != "" {
		return &Owner{ID: userID}
	}
	return nil
}
