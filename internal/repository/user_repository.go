package repository

import (
	"context"

	"github.com/spec-kit/survey-service/internal/domain"
)

// UserRepository reads the externally owned user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListByDepartmentNames(ctx context.Context, names []string) ([]domain.User, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, name, email, COALESCE(department, ''), hashed_password, role, created_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO admin_users (username, name, email, department, hashed_password, role)
        VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
        RETURNING id, created_at`

	return r.db.QueryRow(ctx, query,
		user.Username,
		user.Name,
		user.Email,
		user.Department,
		user.HashedPassword,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM admin_users WHERE username=$1`

	var user domain.User
	if err := scanUser(r.db.QueryRow(ctx, query, username), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByDepartmentNames matches on the department name string, ordered by id.
func (r *userRepository) ListByDepartmentNames(ctx context.Context, names []string) ([]domain.User, error) {
	result := make([]domain.User, 0)
	if len(names) == 0 {
		return result, nil
	}

	query := `SELECT ` + userColumns + ` FROM admin_users WHERE department = ANY($1) ORDER BY id`
	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, user *domain.User) error {
	return row.Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Email,
		&user.Department,
		&user.HashedPassword,
		&user.Role,
		&user.CreatedAt,
	)
}
