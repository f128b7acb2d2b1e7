package directory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"pairchat/internal/app/db"
	dbc "pairchat/internal/app/db/sqlc"
	"pairchat/internal/app/user"
)

// userQuerier is the subset of generated queries the Postgres directory needs.
type userQuerier interface {
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, arg dbc.CreateUserParams) (dbc.User, error)
	GetUserByID(ctx context.Context, id pgtype.UUID) (dbc.User, error)
	GetUserByUsername(ctx context.Context, username string) (dbc.User, error)
	ListUsersExcept(ctx context.Context, id pgtype.UUID) ([]dbc.User, error)
}

// Postgres stores accounts in the users table.
type Postgres struct {
	queries userQuerier
}

// NewPostgres returns a directory backed by the given queries.
func NewPostgres(queries userQuerier) *Postgres {
	return &Postgres{queries: queries}
}

func (p *Postgres) Register(ctx context.Context, username, password string) (user.User, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return user.User{}, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return user.User{}, err
	}

	row, err := p.queries.CreateUser(ctx, dbc.CreateUserParams{Username: username, PasswordHash: hash})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return user.User{}, ErrUsernameTaken
		}
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	return toUser(row), nil
}

func (p *Postgres) Authenticate(ctx context.Context, username, password string) (user.User, error) {
	row, err := p.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			checkPassword(string(dummyHash), password)
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("get user by username: %w", err)
	}

	if !checkPassword(row.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}

	return toUser(row), nil
}

func (p *Postgres) Get(ctx context.Context, id string) (user.User, error) {
	uid, ok := db.ParseUUID(id)
	if !ok {
		return user.User{}, ErrUserNotFound
	}

	row, err := p.queries.GetUserByID(ctx, uid)
	if err != nil {
		if db.IsNoRows(err) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("get user by id: %w", err)
	}

	return toUser(row), nil
}

// ListExcept treats an id that is not a UUID as matching no account, so every user is returned.
func (p *Postgres) ListExcept(ctx context.Context, id string) ([]user.User, error) {
	uid, _ := db.ParseUUID(id)

	rows, err := p.queries.ListUsersExcept(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, toUser(row))
	}
	return out, nil
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	n, err := p.queries.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

func (p *Postgres) Durable() bool { return true }

func toUser(row dbc.User) user.User {
	return user.New(db.UUIDString(row.ID), row.Username)
}
