package user

import (
	"database/sql"
	"errors"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lib/pq"
	"github.com/segmentio/ksuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrTokenExpired       = errors.New("password reset token is expired or used")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db}
}

// CreateUser registers a new account with a bcrypt password hash.
func (r *Repository) CreateUser(email, password, userType string) (User, error) {
	userID, err := ksuid.NewRandom()
	if err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:        userID.String(),
		Email:     email,
		Type:      userType,
		CreatedAt: time.Now().UTC(),
		IsAdmin:   userType == UserTypeAdmin,
	}
	_, err = r.db.Exec(`INSERT INTO users (id, email, password_hash, user_type, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, string(hash), u.Type, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	u.CreatedAtHumanised = humanize.Time(u.CreatedAt)
	return u, nil
}

// AuthenticateUser checks email+password and returns the matching user.
func (r *Repository) AuthenticateUser(email, password string) (User, error) {
	u := User{}
	var hash string
	row := r.db.QueryRow(`SELECT id, email, password_hash, user_type, created_at FROM users WHERE email = $1`, email)
	if err := row.Scan(&u.ID, &u.Email, &hash, &u.Type, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	u.IsAdmin = u.Type == UserTypeAdmin
	u.CreatedAtHumanised = humanize.Time(u.CreatedAt)
	return u, nil
}

func (r *Repository) GetUser(email string) (User, error) {
	u := User{}
	row := r.db.QueryRow(`SELECT id, email, user_type, created_at FROM users WHERE email = $1`, email)
	if err := row.Scan(&u.ID, &u.Email, &u.Type, &u.CreatedAt); err != nil {
		return u, err
	}
	u.IsAdmin = u.Type == UserTypeAdmin
	u.CreatedAtHumanised = humanize.Time(u.CreatedAt)
	return u, nil
}

func (r *Repository) GetUserByID(id string) (User, error) {
	u := User{}
	row := r.db.QueryRow(`SELECT id, email, user_type, created_at FROM users WHERE id = $1`, id)
	if err := row.Scan(&u.ID, &u.Email, &u.Type, &u.CreatedAt); err != nil {
		return u, err
	}
	u.IsAdmin = u.Type == UserTypeAdmin
	u.CreatedAtHumanised = humanize.Time(u.CreatedAt)
	return u, nil
}

// PromoteToAdmin grants the admin role to an already-registered account.
func (r *Repository) PromoteToAdmin(email string) error {
	_, err := r.db.Exec(`UPDATE users SET user_type = $1 WHERE email = $2`, UserTypeAdmin, email)
	return err
}

func (r *Repository) DeleteUserByEmail(email string) error {
	_, err := r.db.Exec(`DELETE FROM users WHERE email = $1`, email)
	return err
}

// SavePasswordResetToken issues a reset token for the given email.
func (r *Repository) SavePasswordResetToken(email string) (string, error) {
	token, err := ksuid.NewRandom()
	if err != nil {
		return "", err
	}
	if _, err := r.db.Exec(`INSERT INTO password_reset_token (token, email, created_at) VALUES ($1, $2, $3)`,
		token.String(), email, time.Now().UTC()); err != nil {
		return "", err
	}
	return token.String(), nil
}

// ConfirmPasswordReset consumes a valid token and updates the password.
func (r *Repository) ConfirmPasswordReset(token, newPassword string, maxAge time.Duration) error {
	var email string
	row := r.db.QueryRow(`SELECT email FROM password_reset_token WHERE token = $1 AND used_at IS NULL AND created_at > $2`,
		token, time.Now().UTC().Add(-maxAge))
	if err := row.Scan(&email); err != nil {
		if err == sql.ErrNoRows {
			return ErrTokenExpired
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE users SET password_hash = $1 WHERE email = $2`, string(hash), email); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`UPDATE password_reset_token SET used_at = $1 WHERE token = $2`, time.Now().UTC(), token); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// DeleteExpiredPasswordResetTokens deletes tokens older than 1 week.
func (r *Repository) DeleteExpiredPasswordResetTokens() error {
	_, err := r.db.Exec(`DELETE FROM password_reset_token WHERE created_at < NOW() - INTERVAL '7 DAYS'`)
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
