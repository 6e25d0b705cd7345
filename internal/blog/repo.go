package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/bloglist/internal/telemetry/tracing"
	"github.com/2beens/bloglist/pkg"
)

const blogColumns = `
	b.id, b.title, b.author, b.url, b.likes, b.created_at,
	u.id, u.username, u.name
`

var _ blogRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Add stores the blog, assigning its ID and creation time.
// The owner, when set, is referenced by ID only.
func (r *Repo) Add(ctx context.Context, blog *Blog) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := blog.Validate(); err != nil {
		return err
	}

	blog.ID = uuid.NewString()
	if blog.CreatedAt.IsZero() {
		blog.CreatedAt = time.Now().UTC()
	}

	var userID *string
	if blog.User != nil {
		userID = &blog.User.ID
		span.SetAttributes(attribute.String("user_id", blog.User.ID))
	}

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO blog (id, title, author, url, likes, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		blog.ID, blog.Title, blog.Author, blog.URL, blog.Likes, userID, blog.CreatedAt,
	); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrUnknownOwner
		}
		return fmt.Errorf("insert blog: %w", err)
	}

	span.SetAttributes(attribute.String("id", blog.ID))
	return nil
}

// Update replaces title, author, url and likes of an existing blog and
// returns the stored result, owner included.
func (r *Repo) Update(ctx context.Context, blog *Blog) (_ *Blog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Update")
	span.SetAttributes(attribute.String("id", blog.ID))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := blog.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`WITH b AS (
			UPDATE blog SET title = $1, author = $2, url = $3, likes = $4
			WHERE id = $5
			RETURNING *
		)
		SELECT `+blogColumns+`
		FROM b LEFT JOIN app_user u ON u.id = b.user_id;`,
		blog.Title, blog.Author, blog.URL, blog.Likes, blog.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update blog: %w", err)
	}
	defer rows.Close()

	updated, err := r.rows2blogs(rows)
	if err != nil {
		return nil, err
	}
	if len(updated) == 0 {
		return nil, ErrBlogNotFound
	}

	return updated[0], nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Delete")
	span.SetAttributes(attribute.String("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(ctx, `DELETE FROM blog WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBlogNotFound
	}
	return nil
}

func (r *Repo) All(ctx context.Context) (_ []*Blog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.All")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+blogColumns+`
		FROM blog b LEFT JOIN app_user u ON u.id = b.user_id
		ORDER BY b.created_at, b.id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query blogs: %w", err)
	}
	defer rows.Close()

	blogs, err := r.rows2blogs(rows)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("count", len(blogs)))

	return blogs, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Blog, err error) {
	log.Tracef("getting blog %s", id)

	ctx, span := tracing.GlobalTracer.Start(ctx, "blogRepo.Get")
	span.SetAttributes(attribute.String("id", id))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+blogColumns+`
		FROM blog b LEFT JOIN app_user u ON u.id = b.user_id
		WHERE b.id = $1;`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query blog: %w", err)
	}
	defer rows.Close()

	blogs, err := r.rows2blogs(rows)
	if err != nil {
		return nil, err
	}
	if len(blogs) == 0 {
		return nil, ErrBlogNotFound
	}

	return blogs[0], nil
}

func (r *Repo) rows2blogs(rows pgx.Rows) ([]*Blog, error) {
	blogs := make([]*Blog, 0)
	for rows.Next() {
		var b Blog
		var userID, username, name *string
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.URL, &b.Likes, &b.CreatedAt,
			&userID, &username, &name,
		); err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		if userID != nil {
			b.User = &Owner{ID: *userID}
			if username != nil {
				b.User.Username = *username
			}
			if name != nil {
				b.User.Name = *name
			}
		}
		blogs = append(blogs, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blogs: %w", err)
	}

	return blogs, nil
}
