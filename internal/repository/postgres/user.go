package postgres

import (
	"context"
	"database/sql"
	"errors"

	"runnerly-backend/internal/domain"
	"runnerly-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, phone_number, name, role, active, created_on, updated_on
	          FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.PhoneNumber, &u.Name, &u.Role, &u.Active, &u.CreatedOn, &u.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepository) ListAdmins(ctx context.Context) ([]domain.User, error) {
	query := `SELECT id, email, phone_number, name, role, active, created_on, updated_on
	          FROM users WHERE role = $1 AND active = true`
	rows, err := r.db.QueryContext(ctx, query, domain.UserRoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.Name, &u.Role, &u.Active, &u.CreatedOn, &u.UpdatedOn); err != nil {
			return nil, err
		}
		admins = append(admins, u)
	}
	return admins, rows.Err()
}
