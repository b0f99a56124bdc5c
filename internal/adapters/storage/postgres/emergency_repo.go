package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jsricop/vitalgo/internal/domain/emergency"
)

// GrantsRepo persiste los grants de emergencia. Devuelve los centinelas del
// dominio emergency porque el servicio decide política sobre ellos.
type GrantsRepo struct {
	db *sql.DB
}

func NewGrantsRepo(db *sql.DB) *GrantsRepo {
	return &GrantsRepo{db: db}
}

func (r *GrantsRepo) Create(ctx context.Context, g emergency.Grant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO qr_codes (
			id, patient_id, token, is_active, expires_at, revoked_at,
			access_count, last_accessed_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		g.ID,
		g.PatientID,
		g.Token,
		g.Active,
		toNullTime(g.ExpiresAt),
		toNullTime(g.RevokedAt),
		g.AccessCount,
		toNullTime(g.LastAccessedAt),
		g.CreatedAt,
	)
	return err
}

func (r *GrantsRepo) GetByToken(ctx context.Context, token string) (emergency.Grant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return emergency.Grant{}, emergency.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, patient_id, token, is_active, expires_at, revoked_at,
			access_count, last_accessed_at, created_at
		FROM qr_codes
		WHERE token = $1
	`, token)

	var g emergency.Grant
	var expiresAt, revokedAt, lastAccessedAt sql.NullTime

	if err := row.Scan(
		&g.ID,
		&g.PatientID,
		&g.Token,
		&g.Active,
		&expiresAt,
		&revokedAt,
		&g.AccessCount,
		&lastAccessedAt,
		&g.CreatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return emergency.Grant{}, emergency.ErrNotFound
		}
		return emergency.Grant{}, err
	}
	g.ExpiresAt = fromNullTime(expiresAt)
	g.RevokedAt = fromNullTime(revokedAt)
	g.LastAccessedAt = fromNullTime(lastAccessedAt)
	return g, nil
}

func (r *GrantsRepo) ListByPatient(ctx context.Context, patientID string) ([]emergency.Grant, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, patient_id, token, is_active, expires_at, revoked_at,
			access_count, last_accessed_at, created_at
		FROM qr_codes
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]emergency.Grant, 0)
	for rows.Next() {
		var g emergency.Grant
		var expiresAt, revokedAt, lastAccessedAt sql.NullTime

		if err := rows.Scan(
			&g.ID,
			&g.PatientID,
			&g.Token,
			&g.Active,
			&expiresAt,
			&revokedAt,
			&g.AccessCount,
			&lastAccessedAt,
			&g.CreatedAt,
		); err != nil {
			return nil, err
		}
		g.ExpiresAt = fromNullTime(expiresAt)
		g.RevokedAt = fromNullTime(revokedAt)
		g.LastAccessedAt = fromNullTime(lastAccessedAt)
		out = append(out, g)
	}
	return out, rows.Err()
}

// Deactivate es idempotente: revocar un grant ya inactivo no afecta filas
// pero igual termina bien; solo el token inexistente es error.
func (r *GrantsRepo) Deactivate(ctx context.Context, token string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE qr_codes
		SET is_active = FALSE, revoked_at = $2
		WHERE token = $1 AND is_active = TRUE
	`, strings.TrimSpace(token), at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM qr_codes WHERE token = $1)
	`, strings.TrimSpace(token)).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return emergency.ErrNotFound
	}
	return nil
}

// RecordAccess incrementa el contador en el propio UPDATE; nunca hay un
// read-modify-write desde el caller.
func (r *GrantsRepo) RecordAccess(ctx context.Context, token string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE qr_codes
		SET
			access_count = access_count + 1,
			last_accessed_at = $2
		WHERE token = $1
	`, strings.TrimSpace(token), at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return emergency.ErrNotFound
	}
	return nil
}

// AuditRepo es append-only a nivel de código: no existe UPDATE ni DELETE
// sobre qr_access_logs.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, e emergency.AccessLogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO qr_access_logs (
			id, grant_token, accessed_by, access_role,
			timestamp, success, failure_reason, source_addr
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID,
		e.GrantToken,
		e.AccessedBy,
		string(e.AccessRole),
		e.Timestamp,
		e.Success,
		string(e.FailureReason),
		e.SourceAddr,
	)
	return err
}

func (r *AuditRepo) ListByToken(ctx context.Context, token string) ([]emergency.AccessLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, grant_token, accessed_by, access_role,
			timestamp, success, failure_reason, source_addr
		FROM qr_access_logs
		WHERE grant_token = $1
		ORDER BY timestamp ASC
	`, strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]emergency.AccessLogEntry, 0)
	for rows.Next() {
		var e emergency.AccessLogEntry
		var role, reason string

		if err := rows.Scan(
			&e.ID,
			&e.GrantToken,
			&e.AccessedBy,
			&role,
			&e.Timestamp,
			&e.Success,
			&reason,
			&e.SourceAddr,
		); err != nil {
			return nil, err
		}
		e.AccessRole = emergency.Role(role)
		e.FailureReason = emergency.Reason(reason)
		out = append(out, e)
	}
	return out, rows.Err()
}
