package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/bloglist/internal/telemetry/tracing"
	"github.com/2beens/bloglist/pkg"
)

var _ userRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, user *User) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "userRepo.Add")
	span.SetAttributes(attribute.String("username", user.Username))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user.ID = uuid.NewString()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.Exec(
		ctx,
		`INSERT INTO app_user (id, username, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5);`,
		user.ID, user.Username, user.Name, user.PasswordHash, user.CreatedAt,
	); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if user.Blogs == nil {
		user.Blogs = []*BlogRef{}
	}

	return nil
}

func (r *Repo) ByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "userRepo.ByUsername")
	span.SetAttributes(attribute.String("username", username))
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, name, password_hash, created_at
		FROM app_user WHERE username = $1;`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query user: %w", err)
		}
		return nil, ErrUserNotFound
	}

	var u User
	if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &u, nil
}

// All returns every user together with the blogs they created, both in
// creation order.
func (r *Repo) All(ctx context.Context) (_ []*User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "userRepo.All")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT u.id, u.username, u.name, u.created_at,
			b.id, b.title, b.author, b.url
		FROM app_user u LEFT JOIN blog b ON b.user_id = u.id
		ORDER BY u.created_at, u.id, b.created_at, b.id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	var current *User
	for rows.Next() {
		var u User
		var blogID, title, author, url *string
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Name, &u.CreatedAt,
			&blogID, &title, &author, &url,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		if current == nil || current.ID != u.ID {
			u.Blogs = []*BlogRef{}
			current = &u
			users = append(users, current)
		}

		if blogID != nil {
			current.Blogs = append(current.Blogs, &BlogRef{
				ID:     *blogID,
				Title:  deref(title),
				Author: deref(author),
				URL:    deref(url),
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(users)))
	return users, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
