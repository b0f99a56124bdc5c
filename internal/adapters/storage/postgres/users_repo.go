package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jsricop/vitalgo/internal/domain/users"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash,
			first_name, last_name, phone,
			role, status, approved_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		u.ID,
		u.Email,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.Phone,
		string(u.Role),
		string(u.Status),
		toNullTime(u.ApprovedAt),
		u.CreatedAt,
		u.UpdatedAt,
	)
	return err
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			first_name = $2,
			last_name = $3,
			phone = $4,
			status = $5,
			approved_at = $6,
			updated_at = $7
		WHERE id = $1
	`,
		u.ID,
		u.FirstName,
		u.LastName,
		u.Phone,
		string(u.Status),
		toNullTime(u.ApprovedAt),
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT
			id, email, password_hash,
			first_name, last_name, phone,
			role, status, approved_at,
			created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return users.User{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT
			id, email, password_hash,
			first_name, last_name, phone,
			role, status, approved_at,
			created_at, updated_at
		FROM users
		WHERE email = $1
	`, email))
}

func (r *UsersRepo) ListByRoleAndStatus(ctx context.Context, role users.Role, status users.Status) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, email, password_hash,
			first_name, last_name, phone,
			role, status, approved_at,
			created_at, updated_at
		FROM users
		WHERE role = $1 AND status = $2
		ORDER BY created_at ASC
	`, string(role), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		var u users.User
		var roleStr, statusStr string
		var approvedAt sql.NullTime

		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.PasswordHash,
			&u.FirstName,
			&u.LastName,
			&u.Phone,
			&roleStr,
			&statusStr,
			&approvedAt,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		u.Role = users.Role(roleStr)
		u.Status = users.Status(statusStr)
		u.ApprovedAt = fromNullTime(approvedAt)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsersRepo) CreateParamedic(ctx context.Context, p users.Paramedic) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO paramedics (
			user_id, medical_license, specialty,
			institution, years_experience, license_expiry
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		p.UserID,
		p.MedicalLicense,
		p.Specialty,
		p.Institution,
		p.YearsExperience,
		p.LicenseExpiry,
	)
	return err
}

func (r *UsersRepo) GetParamedic(ctx context.Context, userID string) (users.Paramedic, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, medical_license, specialty,
			institution, years_experience, license_expiry
		FROM paramedics
		WHERE user_id = $1
	`, strings.TrimSpace(userID))

	var p users.Paramedic
	if err := row.Scan(
		&p.UserID,
		&p.MedicalLicense,
		&p.Specialty,
		&p.Institution,
		&p.YearsExperience,
		&p.LicenseExpiry,
	); err != nil {
		if err == sql.ErrNoRows {
			return users.Paramedic{}, ErrNotFound
		}
		return users.Paramedic{}, err
	}
	return p, nil
}

func (r *UsersRepo) scanOne(row *sql.Row) (users.User, error) {
	var u users.User
	var roleStr, statusStr string
	var approvedAt sql.NullTime

	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.Phone,
		&roleStr,
		&statusStr,
		&approvedAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	u.Role = users.Role(roleStr)
	u.Status = users.Status(statusStr)
	u.ApprovedAt = fromNullTime(approvedAt)
	return u, nil
}
