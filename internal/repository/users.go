package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jz3el/luxemart-ecommerce/internal/domain"
)

const userColumns = `user_id, first_name, last_name, email, password_hash, phone_number, address,
	city, state, zip_code, country, role, is_active, created_at, updated_at`

func (r *Repository) CreateUser(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (first_name, last_name, email, password_hash, phone_number, role, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING user_id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		u.FirstName,
		u.LastName,
		u.Email,
		u.PasswordHash,
		u.PhoneNumber,
		u.Role,
		u.IsActive).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return translate(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return &u, nil
}

// GetUserByEmail expects a normalized email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &u, nil
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return exists, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, u *domain.User) error {
	query := `UPDATE users
	          SET first_name = $2, last_name = $3, phone_number = $4, address = $5,
	              city = $6, state = $7, zip_code = $8, country = $9, updated_at = NOW()
	          WHERE user_id = $1
	          RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		u.ID,
		u.FirstName,
		u.LastName,
		u.PhoneNumber,
		u.Address,
		u.City,
		u.State,
		u.ZipCode,
		u.Country).Scan(&u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE user_id = $1`, userID, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return expectRow(res, domain.ErrUserNotFound)
}

func (r *Repository) SetUserActive(ctx context.Context, userID int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE user_id = $1`, userID, active)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return expectRow(res, domain.ErrUserNotFound)
}

func (r *Repository) SetUserRole(ctx context.Context, userID int64, role domain.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE user_id = $1`, userID, role)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return expectRow(res, domain.ErrUserNotFound)
}

func (r *Repository) ListUsers(ctx context.Context, q domain.UserQuery) ([]domain.User, int, error) {
	var (
		where []string
		args  []any
	)
	if s := strings.TrimSpace(q.Search); s != "" {
		args = append(args, containsPattern(s))
		where = append(where, fmt.Sprintf(
			"(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR email ILIKE $%[1]d)", len(args)))
	}
	if q.Role != "" {
		args = append(args, q.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	clause := whereClause(where)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args = append(args, q.PageSize, domain.Offset(q.Page, q.PageSize))
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC, user_id DESC LIMIT $%d OFFSET $%d`,
		userColumns, clause, len(args)-1, len(args))

	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	return users, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into an ILIKE substring pattern. Wildcards
// in the input match literally under the default backslash escape.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
