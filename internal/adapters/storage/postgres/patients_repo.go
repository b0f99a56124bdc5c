package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jsricop/vitalgo/internal/domain/patients"
)

type PatientsRepo struct {
	db *sql.DB
}

func NewPatientsRepo(db *sql.DB) *PatientsRepo {
	return &PatientsRepo{db: db}
}

func (r *PatientsRepo) Create(ctx context.Context, p patients.Patient) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO patients (
			id, user_id, document_type, document_number,
			birth_date, gender, blood_type, eps,
			emergency_contact_name, emergency_contact_phone,
			address, city,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		p.ID,
		p.UserID,
		string(p.DocumentType),
		p.DocumentNumber,
		p.BirthDate,
		string(p.Gender),
		string(p.BloodType),
		p.EPS,
		p.EmergencyContactName,
		p.EmergencyContactPhone,
		p.Address,
		p.City,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PatientsRepo) Update(ctx context.Context, p patients.Patient) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE patients
		SET
			blood_type = $2,
			eps = $3,
			emergency_contact_name = $4,
			emergency_contact_phone = $5,
			address = $6,
			city = $7,
			updated_at = $8
		WHERE id = $1
	`,
		p.ID,
		string(p.BloodType),
		p.EPS,
		p.EmergencyContactName,
		p.EmergencyContactPhone,
		p.Address,
		p.City,
		p.UpdatedAt,
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

func (r *PatientsRepo) GetByID(ctx context.Context, id string) (patients.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return patients.Patient{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, selectPatient+` WHERE id = $1`, id))
}

func (r *PatientsRepo) GetByUserID(ctx context.Context, userID string) (patients.Patient, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return patients.Patient{}, ErrNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, selectPatient+` WHERE user_id = $1`, userID))
}

const selectPatient = `
	SELECT
		id, user_id, document_type, document_number,
		birth_date, gender, blood_type, eps,
		emergency_contact_name, emergency_contact_phone,
		address, city,
		created_at, updated_at
	FROM patients`

func (r *PatientsRepo) scanOne(row *sql.Row) (patients.Patient, error) {
	var p patients.Patient
	var docType, gender, bloodType string

	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&docType,
		&p.DocumentNumber,
		&p.BirthDate,
		&gender,
		&bloodType,
		&p.EPS,
		&p.EmergencyContactName,
		&p.EmergencyContactPhone,
		&p.Address,
		&p.City,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return patients.Patient{}, ErrNotFound
		}
		return patients.Patient{}, err
	}
	p.DocumentType = patients.DocumentType(docType)
	p.Gender = patients.Gender(gender)
	p.BloodType = patients.BloodType(bloodType)
	return p, nil
}
