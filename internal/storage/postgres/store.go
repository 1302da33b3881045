package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripmesh/auth-service/internal/models"
	"github.com/tripmesh/auth-service/internal/storage"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Store provides Postgres-backed persistence for users.
type Store struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new Store and runs migrations.
func NewUserStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			date_of_birth DATE NOT NULL,
			gender TEXT NOT NULL DEFAULT '',
			nationality TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			bio TEXT NOT NULL DEFAULT '',
			profession TEXT NOT NULL DEFAULT '',
			profile_picture TEXT NOT NULL DEFAULT '',
			cover_picture TEXT NOT NULL DEFAULT '',
			face_encoding_data TEXT NOT NULL DEFAULT '',
			face_verified BOOLEAN NOT NULL DEFAULT FALSE,
			roles TEXT[] NOT NULL DEFAULT '{USER}',
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_banned BOOLEAN NOT NULL DEFAULT FALSE,
			two_factor_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			two_factor_secret TEXT NOT NULL DEFAULT '',
			travel_styles TEXT[] NOT NULL DEFAULT '{}',
			languages TEXT[] NOT NULL DEFAULT '{}',
			interests TEXT[] NOT NULL DEFAULT '{}',
			personality_type TEXT NOT NULL DEFAULT '',
			personality_traits TEXT NOT NULL DEFAULT '',
			dream_countries TEXT NOT NULL DEFAULT '',
			last_login TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (email);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_unique_idx ON users (username);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

const userColumns = `id, email, username, password_hash, first_name, last_name, phone,
	date_of_birth, gender, nationality, city, country, bio, profession,
	profile_picture, cover_picture, face_encoding_data, face_verified, roles,
	is_verified, is_active, is_banned, two_factor_enabled, two_factor_secret,
	travel_styles, languages, interests, personality_type, personality_traits,
	dream_countries, last_login, created_at, updated_at`

// CreateUser inserts a new user row. Unique-constraint violations are mapped
// to storage.ErrEmailTaken / storage.ErrUsernameTaken.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (
			email, username, password_hash, first_name, last_name, phone,
			date_of_birth, gender, nationality, city, country, bio, profession,
			profile_picture, cover_picture, face_encoding_data, face_verified, roles,
			is_verified, is_active, is_banned, two_factor_enabled, two_factor_secret,
			travel_styles, languages, interests, personality_type, personality_traits,
			dream_countries
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
		)
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Phone,
		user.DateOfBirth, user.Gender, user.Nationality, user.City, user.Country, user.Bio, user.Profession,
		user.ProfilePicture, user.CoverPicture, user.FaceEncodingData, user.FaceVerified, asArray(user.Roles),
		user.IsVerified, user.IsActive, user.IsBanned, user.TwoFactorEnabled, user.TwoFactorSecret,
		asArray(user.TravelStyles), asArray(user.Languages), asArray(user.Interests),
		user.PersonalityType, user.PersonalityTraits, user.DreamCountries,
	)
	created, err := scanUser(row)
	if err != nil {
		return models.User{}, mapUniqueViolation(err)
	}
	return created, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	return scanUser(row)
}

// FindByID fetches a user by primary key.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	return scanUser(row)
}

// ExistsByEmail reports whether any user row has the given email.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1);`, email).Scan(&exists)
	return exists, err
}

// ExistsByUsername reports whether any user row has the given username.
func (s *Store) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1);`, username).Scan(&exists)
	return exists, err
}

// UpdateUser rewrites the mutable columns of an existing row in a single
// atomic statement. Email and username are immutable after creation and are
// deliberately absent from the SET list.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		UPDATE users SET
			password_hash = $2, first_name = $3, last_name = $4, phone = $5,
			gender = $6, nationality = $7, city = $8, country = $9, bio = $10,
			profession = $11, profile_picture = $12, cover_picture = $13,
			face_encoding_data = $14, face_verified = $15, roles = $16,
			is_verified = $17, is_active = $18, is_banned = $19,
			two_factor_enabled = $20, two_factor_secret = $21,
			travel_styles = $22, languages = $23, interests = $24,
			personality_type = $25, personality_traits = $26, dream_countries = $27,
			last_login = $28, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	row := s.pool.QueryRow(ctx, query,
		user.ID,
		user.PasswordHash, user.FirstName, user.LastName, user.Phone,
		user.Gender, user.Nationality, user.City, user.Country, user.Bio,
		user.Profession, user.ProfilePicture, user.CoverPicture,
		user.FaceEncodingData, user.FaceVerified, asArray(user.Roles),
		user.IsVerified, user.IsActive, user.IsBanned,
		user.TwoFactorEnabled, user.TwoFactorSecret,
		asArray(user.TravelStyles), asArray(user.Languages), asArray(user.Interests),
		user.PersonalityType, user.PersonalityTraits, user.DreamCountries,
		user.LastLogin,
	)
	return scanUser(row)
}

// UpdateLastLogin stamps the login timestamp without touching any other
// column, so it cannot revert writes racing the caller's earlier read.
func (s *Store) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET last_login = $2, updated_at = NOW() WHERE id = $1;`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Phone,
		&user.DateOfBirth, &user.Gender, &user.Nationality, &user.City, &user.Country, &user.Bio, &user.Profession,
		&user.ProfilePicture, &user.CoverPicture, &user.FaceEncodingData, &user.FaceVerified, &user.Roles,
		&user.IsVerified, &user.IsActive, &user.IsBanned, &user.TwoFactorEnabled, &user.TwoFactorSecret,
		&user.TravelStyles, &user.Languages, &user.Interests, &user.PersonalityType, &user.PersonalityTraits,
		&user.DreamCountries, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// asArray keeps nil slices out of pgx so TEXT[] columns always receive '{}'.
func asArray(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return storage.ErrEmailTaken
		case strings.Contains(pgErr.ConstraintName, "username"):
			return storage.ErrUsernameTaken
		default:
			return storage.ErrAlreadyExists
		}
	}
	return err
}
