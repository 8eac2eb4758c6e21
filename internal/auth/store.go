package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/lcmaths/practice-api/internal/db"
)

type User struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

var ErrNotFound = errors.New("user not found")

// Store owns the users and sessions tables. Sessions are opaque random
// tokens with a TTL; Resolve renews a session when less than half of the
// TTL remains, so active users stay logged in.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

func NewStore(dbh *sql.DB, sessionTTL time.Duration) *Store {
	return &Store{db: dbh, ttl: sessionTTL}
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash string, isAdmin bool) (User, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, is_admin, created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
		email, passwordHash, isAdmin, time.Now().Unix()).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, db.ErrUniqueViolation
		}
		return User{}, err
	}
	return User{ID: id, Email: email, IsAdmin: isAdmin}, nil
}

// GetUserByEmail also returns the stored password hash for login checks.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, string, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, is_admin, password_hash FROM users WHERE email=$1`,
		email).Scan(&u.ID, &u.Email, &u.IsAdmin, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	if err != nil {
		return User{}, "", err
	}
	return u, hash, nil
}

func (s *Store) CreateSession(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1,$2,$3,$4)`,
		token, userID, now.Unix(), now.Add(s.ttl).Unix())
	if err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a session token to its user. Unknown tokens, expired
// sessions, and storage errors all degrade to "not authenticated"; callers
// never see a session error.
func (s *Store) Resolve(ctx context.Context, token string) (User, bool) {
	if token == "" {
		return User{}, false
	}
	var u User
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT users.id, users.email, users.is_admin, sessions.expires_at
		   FROM sessions JOIN users ON users.id = sessions.user_id
		  WHERE sessions.id = $1`,
		token).Scan(&u.ID, &u.Email, &u.IsAdmin, &expiresAt)
	if err != nil {
		return User{}, false
	}
	now := time.Now()
	if now.Unix() >= expiresAt {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, token)
		return User{}, false
	}
	// Sliding renewal.
	if time.Unix(expiresAt, 0).Sub(now) < s.ttl/2 {
		_, _ = s.db.ExecContext(ctx, `UPDATE sessions SET expires_at=$1 WHERE id=$2`,
			now.Add(s.ttl).Unix(), token)
	}
	return u, true
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id=$1`, token)
	return err
}
