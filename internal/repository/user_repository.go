package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/murenzi/renting-api/internal/utils"
)

// User mirrors the 'users' table. Accounts start inactive and must be
// activated through the emailed link before login succeeds.
type User struct {
	ID           uint64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	IsManager    bool
	IsLandlord   bool
	IsSuperuser  bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role labels used in JWT claims and route guards.
const (
	RoleTenant   = "TENANT"
	RoleLandlord = "LANDLORD"
	RoleManager  = "MANAGER"
)

// Role derives the primary role label from the account flags.
func (u User) Role() string {
	switch {
	case u.IsManager:
		return RoleManager
	case u.IsLandlord:
		return RoleLandlord
	}
	return RoleTenant
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, first_name, last_name, email, password_hash,
	is_manager, is_landlord, is_superuser, is_active, created_at, updated_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.IsManager, &u.IsLandlord, &u.IsSuperuser, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create inserts a user and returns its ID. The email is normalized to
// lowercase; a duplicate maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, firstName, lastName, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	isManager := role == RoleManager
	isLandlord := role == RoleLandlord
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (first_name, last_name, email, password_hash, is_manager, is_landlord)
		 VALUES (?,?,?,?,?,?)`,
		firstName, lastName, email, hash, isManager, isLandlord)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? LIMIT 1`, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? LIMIT 1`, id))
}

// Activate flips is_active on. It returns sql.ErrNoRows when the account is
// unknown or already active, which lets the activation endpoint report a
// consumed link.
func (r *UserRepo) Activate(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET is_active = 1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND is_active = 0`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored hash. Used by password-reset confirm.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
