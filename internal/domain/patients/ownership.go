package patients

import "context"

// OwnerOf expone el userID dueño de un perfil de paciente.
// Se usa desde el módulo emergency para el chequeo de rol patient
// sin crear ciclos de imports.
func (s *Service) OwnerOf(ctx context.Context, patientID string) (string, error) {
	p, err := s.GetByID(ctx, patientID)
	if err != nil {
		return "", err
	}
	return p.UserID, nil
}

// EmergencySummary arma la proyección de identidad que se revela en un
// acceso de emergencia. La composición depende solo del paciente objetivo.
func (s *Service) EmergencySummary(ctx context.Context, patientID string) (Summary, error) {
	p, err := s.GetByID(ctx, patientID)
	if err != nil {
		return Summary{}, err
	}

	fullName := ""
	if s.names != nil {
		if n, err := s.names.FullName(ctx, p.UserID); err == nil {
			fullName = n
		}
	}

	return Summary{
		PatientID:             p.ID,
		UserID:                p.UserID,
		FullName:              fullName,
		DocumentType:          p.DocumentType,
		DocumentNumber:        p.DocumentNumber,
		Age:                   p.Age(s.now()),
		Gender:                p.Gender,
		BloodType:             p.BloodType,
		EPS:                   p.EPS,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
	}, nil
}
