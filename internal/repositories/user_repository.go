package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"complexcare/internal/database"
	"complexcare/internal/models"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, tenant_id, email, password_hash, name, role, created_at, last_login_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.TenantID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Prepare()

	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	return database.Conn(ctx, r.pool).QueryRow(ctx, query,
		user.ID,
		user.TenantID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
	).Scan(&user.CreatedAt)
}

func (r *UserRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	return scanUser(database.Conn(ctx, r.pool).QueryRow(ctx, query, email))
}

func (r *UserRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 ORDER BY name, email`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *UserRepository) CountSuperadmins(ctx context.Context) (int, error) {
	var n int
	err := database.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = 'superadmin'`).Scan(&n)
	return n, err
}
