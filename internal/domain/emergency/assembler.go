package emergency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jsricop/vitalgo/internal/domain/patients"
)

// Assemble arma el payload de revelación para un paciente. La composición
// depende solo del paciente objetivo; el tier reducido recorta identidad
// sensible y omite el historial (reservado para políticas futuras).
func (s *Service) Assemble(ctx context.Context, patientID string, tier Tier) (DisclosurePayload, error) {
	bctx, cancel := s.bound(ctx)
	defer cancel()

	summary, err := s.directory.EmergencySummary(bctx, patientID)
	if err != nil {
		if errors.Is(err, patients.ErrNotFound) {
			return DisclosurePayload{}, ErrNotFound
		}
		return DisclosurePayload{}, fmt.Errorf("%w: patient summary: %v", ErrUnavailable, err)
	}

	payload := DisclosurePayload{
		Tier:      tier,
		Patient:   summary,
		Allergies: []AllergyInfo{},
		Illnesses: []IllnessInfo{},
		Surgeries: []SurgeryInfo{},
	}

	if tier == TierRestricted {
		payload.Patient.DocumentType = ""
		payload.Patient.DocumentNumber = ""
		payload.Patient.EPS = ""
		return payload, nil
	}

	actx, cancelA := s.bound(ctx)
	defer cancelA()
	allergies, err := s.history.ActiveAllergies(actx, patientID)
	if err != nil {
		return DisclosurePayload{}, fmt.Errorf("%w: allergies: %v", ErrUnavailable, err)
	}
	for _, a := range allergies {
		payload.Allergies = append(payload.Allergies, AllergyInfo{
			Allergen:      a.Allergen,
			Severity:      string(a.Severity),
			Symptoms:      a.Symptoms,
			Treatment:     a.Treatment,
			DiagnosedDate: a.DiagnosedDate,
		})
	}

	ictx, cancelI := s.bound(ctx)
	defer cancelI()
	illnesses, err := s.history.OngoingIllnesses(ictx, patientID)
	if err != nil {
		return DisclosurePayload{}, fmt.Errorf("%w: illnesses: %v", ErrUnavailable, err)
	}
	for _, i := range illnesses {
		payload.Illnesses = append(payload.Illnesses, IllnessInfo{
			Name:          i.Name,
			Status:        string(i.Status),
			DiagnosisDate: i.DiagnosisDate,
			Treatment:     i.Treatment,
		})
	}

	var since time.Time
	if s.cfg.SurgeryLookback > 0 {
		since = s.now().Add(-s.cfg.SurgeryLookback)
	}
	sctx, cancelS := s.bound(ctx)
	defer cancelS()
	surgeries, err := s.history.SurgeriesSince(sctx, patientID, since)
	if err != nil {
		return DisclosurePayload{}, fmt.Errorf("%w: surgeries: %v", ErrUnavailable, err)
	}
	for _, sg := range surgeries {
		payload.Surgeries = append(payload.Surgeries, SurgeryInfo{
			ProcedureName: sg.ProcedureName,
			Date:          sg.Date,
			Surgeon:       sg.Surgeon,
			Hospital:      sg.Hospital,
		})
	}

	return payload, nil
}
