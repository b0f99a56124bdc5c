package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jsricop/vitalgo/internal/domain/medical"
)

type MedicalRepo struct {
	db *sql.DB
}

func NewMedicalRepo(db *sql.DB) *MedicalRepo {
	return &MedicalRepo{db: db}
}

// ---- alergias ----

func (r *MedicalRepo) CreateAllergy(ctx context.Context, a medical.Allergy) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO allergies (
			id, patient_id, allergen, severity, symptoms, treatment,
			diagnosed_date, notes, state, deleted_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		a.ID,
		a.PatientID,
		a.Allergen,
		string(a.Severity),
		a.Symptoms,
		a.Treatment,
		toNullTime(a.DiagnosedDate),
		a.Notes,
		string(a.State),
		toNullTime(a.DeletedAt),
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *MedicalRepo) UpdateAllergy(ctx context.Context, a medical.Allergy) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE allergies
		SET
			allergen = $2,
			severity = $3,
			symptoms = $4,
			treatment = $5,
			diagnosed_date = $6,
			notes = $7,
			state = $8,
			deleted_at = $9,
			updated_at = $10
		WHERE id = $1
	`,
		a.ID,
		a.Allergen,
		string(a.Severity),
		a.Symptoms,
		a.Treatment,
		toNullTime(a.DiagnosedDate),
		a.Notes,
		string(a.State),
		toNullTime(a.DeletedAt),
		a.UpdatedAt,
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

func (r *MedicalRepo) GetAllergy(ctx context.Context, id string) (medical.Allergy, error) {
	row := r.db.QueryRowContext(ctx, selectAllergy+` WHERE id = $1`, strings.TrimSpace(id))
	return scanAllergy(row)
}

// ListAllergies filtra por tag en SQL: los registros borrados jamás viajan.
func (r *MedicalRepo) ListAllergies(ctx context.Context, patientID string) ([]medical.Allergy, error) {
	rows, err := r.db.QueryContext(ctx, selectAllergy+`
		WHERE patient_id = $1 AND state = 'active'
		ORDER BY created_at ASC
	`, strings.TrimSpace(patientID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medical.Allergy, 0)
	for rows.Next() {
		a, err := scanAllergyRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ---- enfermedades ----

func (r *MedicalRepo) CreateIllness(ctx context.Context, i medical.Illness) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO illnesses (
			id, patient_id, name, status, diagnosis_date, treatment,
			notes, state, deleted_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		i.ID,
		i.PatientID,
		i.Name,
		string(i.Status),
		toNullTime(i.DiagnosisDate),
		i.Treatment,
		i.Notes,
		string(i.State),
		toNullTime(i.DeletedAt),
		i.CreatedAt,
		i.UpdatedAt,
	)
	return err
}

func (r *MedicalRepo) UpdateIllness(ctx context.Context, i medical.Illness) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE illnesses
		SET
			name = $2,
			status = $3,
			diagnosis_date = $4,
			treatment = $5,
			notes = $6,
			state = $7,
			deleted_at = $8,
			updated_at = $9
		WHERE id = $1
	`,
		i.ID,
		i.Name,
		string(i.Status),
		toNullTime(i.DiagnosisDate),
		i.Treatment,
		i.Notes,
		string(i.State),
		toNullTime(i.DeletedAt),
		i.UpdatedAt,
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

func (r *MedicalRepo) GetIllness(ctx context.Context, id string) (medical.Illness, error) {
	row := r.db.QueryRowContext(ctx, selectIllness+` WHERE id = $1`, strings.TrimSpace(id))
	return scanIllness(row)
}

func (r *MedicalRepo) ListIllnesses(ctx context.Context, patientID string) ([]medical.Illness, error) {
	rows, err := r.db.QueryContext(ctx, selectIllness+`
		WHERE patient_id = $1 AND state = 'active'
		ORDER BY created_at ASC
	`, strings.TrimSpace(patientID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medical.Illness, 0)
	for rows.Next() {
		i, err := scanIllnessRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// ---- cirugías ----

func (r *MedicalRepo) CreateSurgery(ctx context.Context, s medical.Surgery) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO surgeries (
			id, patient_id, procedure_name, date, surgeon, hospital,
			complications, notes, state, deleted_at,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		s.ID,
		s.PatientID,
		s.ProcedureName,
		s.Date,
		s.Surgeon,
		s.Hospital,
		s.Complications,
		s.Notes,
		string(s.State),
		toNullTime(s.DeletedAt),
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *MedicalRepo) UpdateSurgery(ctx context.Context, s medical.Surgery) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE surgeries
		SET
			procedure_name = $2,
			surgeon = $3,
			hospital = $4,
			complications = $5,
			notes = $6,
			state = $7,
			deleted_at = $8,
			updated_at = $9
		WHERE id = $1
	`,
		s.ID,
		s.ProcedureName,
		s.Surgeon,
		s.Hospital,
		s.Complications,
		s.Notes,
		string(s.State),
		toNullTime(s.DeletedAt),
		s.UpdatedAt,
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

func (r *MedicalRepo) GetSurgery(ctx context.Context, id string) (medical.Surgery, error) {
	row := r.db.QueryRowContext(ctx, selectSurgery+` WHERE id = $1`, strings.TrimSpace(id))
	return scanSurgery(row)
}

func (r *MedicalRepo) ListSurgeries(ctx context.Context, patientID string) ([]medical.Surgery, error) {
	rows, err := r.db.QueryContext(ctx, selectSurgery+`
		WHERE patient_id = $1 AND state = 'active'
		ORDER BY date DESC
	`, strings.TrimSpace(patientID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medical.Surgery, 0)
	for rows.Next() {
		s, err := scanSurgeryRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ---- scan helpers ----

const selectAllergy = `
	SELECT
		id, patient_id, allergen, severity, symptoms, treatment,
		diagnosed_date, notes, state, deleted_at,
		created_at, updated_at
	FROM allergies`

const selectIllness = `
	SELECT
		id, patient_id, name, status, diagnosis_date, treatment,
		notes, state, deleted_at,
		created_at, updated_at
	FROM illnesses`

const selectSurgery = `
	SELECT
		id, patient_id, procedure_name, date, surgeon, hospital,
		complications, notes, state, deleted_at,
		created_at, updated_at
	FROM surgeries`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAllergy(row *sql.Row) (medical.Allergy, error) {
	a, err := scanAllergyRows(row)
	if err == sql.ErrNoRows {
		return medical.Allergy{}, ErrNotFound
	}
	return a, err
}

func scanAllergyRows(sc rowScanner) (medical.Allergy, error) {
	var a medical.Allergy
	var severity, state string
	var diagnosed, deleted sql.NullTime

	if err := sc.Scan(
		&a.ID,
		&a.PatientID,
		&a.Allergen,
		&severity,
		&a.Symptoms,
		&a.Treatment,
		&diagnosed,
		&a.Notes,
		&state,
		&deleted,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return medical.Allergy{}, err
	}
	a.Severity = medical.Severity(severity)
	a.State = medical.RecordState(state)
	a.DiagnosedDate = fromNullTime(diagnosed)
	a.DeletedAt = fromNullTime(deleted)
	return a, nil
}

func scanIllness(row *sql.Row) (medical.Illness, error) {
	i, err := scanIllnessRows(row)
	if err == sql.ErrNoRows {
		return medical.Illness{}, ErrNotFound
	}
	return i, err
}

func scanIllnessRows(sc rowScanner) (medical.Illness, error) {
	var i medical.Illness
	var status, state string
	var diagnosis, deleted sql.NullTime

	if err := sc.Scan(
		&i.ID,
		&i.PatientID,
		&i.Name,
		&status,
		&diagnosis,
		&i.Treatment,
		&i.Notes,
		&state,
		&deleted,
		&i.CreatedAt,
		&i.UpdatedAt,
	); err != nil {
		return medical.Illness{}, err
	}
	i.Status = medical.IllnessStatus(status)
	i.State = medical.RecordState(state)
	i.DiagnosisDate = fromNullTime(diagnosis)
	i.DeletedAt = fromNullTime(deleted)
	return i, nil
}

func scanSurgery(row *sql.Row) (medical.Surgery, error) {
	s, err := scanSurgeryRows(row)
	if err == sql.ErrNoRows {
		return medical.Surgery{}, ErrNotFound
	}
	return s, err
}

func scanSurgeryRows(sc rowScanner) (medical.Surgery, error) {
	var s medical.Surgery
	var state string
	var deleted sql.NullTime

	if err := sc.Scan(
		&s.ID,
		&s.PatientID,
		&s.ProcedureName,
		&s.Date,
		&s.Surgeon,
		&s.Hospital,
		&s.Complications,
		&s.Notes,
		&state,
		&deleted,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return medical.Surgery{}, err
	}
	s.State = medical.RecordState(state)
	s.DeletedAt = fromNullTime(deleted)
	return s, nil
}
