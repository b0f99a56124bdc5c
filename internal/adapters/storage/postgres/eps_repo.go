package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jsricop/vitalgo/internal/domain/eps"
)

type EPSRepo struct {
	db *sql.DB
}

func NewEPSRepo(db *sql.DB) *EPSRepo {
	return &EPSRepo{db: db}
}

func (r *EPSRepo) Create(ctx context.Context, e eps.EPS) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO eps (
			id, name, code, regime, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		e.ID,
		e.Name,
		e.Code,
		string(e.Regime),
		string(e.Status),
		e.CreatedAt,
		e.UpdatedAt,
	)
	return err
}

func (r *EPSRepo) Update(ctx context.Context, e eps.EPS) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE eps
		SET
			name = $2,
			regime = $3,
			status = $4,
			updated_at = $5
		WHERE id = $1
	`,
		e.ID,
		e.Name,
		string(e.Regime),
		string(e.Status),
		e.UpdatedAt,
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

func (r *EPSRepo) GetByID(ctx context.Context, id string) (eps.EPS, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectEPS+` WHERE id = $1`, strings.TrimSpace(id)))
}

func (r *EPSRepo) GetByCode(ctx context.Context, code string) (eps.EPS, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectEPS+` WHERE code = $1`, strings.TrimSpace(code)))
}

func (r *EPSRepo) List(ctx context.Context) ([]eps.EPS, error) {
	rows, err := r.db.QueryContext(ctx, selectEPS+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eps.EPS, 0)
	for rows.Next() {
		var e eps.EPS
		var regime, status string
		if err := rows.Scan(
			&e.ID,
			&e.Name,
			&e.Code,
			&regime,
			&status,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.Regime = eps.RegimeType(regime)
		e.Status = eps.Status(status)
		out = append(out, e)
	}
	return out, rows.Err()
}

const selectEPS = `
	SELECT id, name, code, regime, status, created_at, updated_at
	FROM eps`

func (r *EPSRepo) scanOne(row *sql.Row) (eps.EPS, error) {
	var e eps.EPS
	var regime, status string

	if err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Code,
		&regime,
		&status,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return eps.EPS{}, ErrNotFound
		}
		return eps.EPS{}, err
	}
	e.Regime = eps.RegimeType(regime)
	e.Status = eps.Status(status)
	return e, nil
}
