package blog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ blogRepo = (*repoMock)(nil)

// repoMock is an in-memory blogRepo, ordered by creation time like the
// postgres one.
type repoMock struct {
	Blogs map[string]*Blog
	Err   error
	mutex sync.Mutex
	clock time.Time
}

func newRepoMock() *repoMock {
	return &repoMock{
		Blogs: make(map[string]*Blog),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *repoMock) BlogsCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.Blogs)
}

func (r *repoMock) Add(_ context.Context, blog *Blog) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if err := blog.Validate(); err != nil {
		return err
	}

	blog.ID = uuid.NewString()
	r.clock = r.clock.Add(time.Second)
	blog.CreatedAt = r.clock
	stored := *blog
	r.Blogs[blog.ID] = &stored
	return nil
}

func (r *repoMock) Update(_ context.Context, blog *Blog) (*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	stored, ok := r.Blogs[blog.ID]
	if !ok {
		return nil, ErrBlogNotFound
	}

	stored.Title = blog.Title
	stored.Author = blog.Author
	stored.URL = blog.URL
	stored.Likes = blog.Likes
	updated := *stored
	return &updated, nil
}

func (r *repoMock) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.Blogs[id]; !ok {
		return ErrBlogNotFound
	}
	delete(r.Blogs, id)
	return nil
}

func (r *repoMock) Get(_ context.Context, id string) (*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	stored, ok := r.Blogs[id]
	if !ok {
		return nil, ErrBlogNotFound
	}
	found := *stored
	return &found, nil
}

func (r *repoMock) All(_ context.Context) ([]*Blog, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.Err != nil {
		return nil, r.Err
	}
	all := make([]*Blog, 0, len(r.Blogs))
	for _, b := range r.Blogs {
		found := *b
		all = append(all, &found)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	return all, nil
}
