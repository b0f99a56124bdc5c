package medical

import (
	"context"
	"sort"
	"time"
)

// Accesores que consume el módulo emergency. Solo registros con tag active;
// el orden es parte del contrato (ver sort* abajo).

// ActiveAllergies: alergias vigentes, severidad desc y luego fecha de
// diagnóstico desc.
func (s *Service) ActiveAllergies(ctx context.Context, patientID string) ([]Allergy, error) {
	return s.ListAllergies(ctx, patientID)
}

// OngoingIllnesses: enfermedades ACTIVE o CHRONIC (las resueltas no se
// revelan en emergencia), fecha de diagnóstico desc.
func (s *Service) OngoingIllnesses(ctx context.Context, patientID string) ([]Illness, error) {
	all, err := s.ListIllnesses(ctx, patientID)
	if err != nil {
		return nil, err
	}
	out := make([]Illness, 0, len(all))
	for _, i := range all {
		if i.Status == IllnessResolved {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

// SurgeriesSince: cirugías con fecha >= since, fecha desc.
// since en cero significa sin cota.
func (s *Service) SurgeriesSince(ctx context.Context, patientID string, since time.Time) ([]Surgery, error) {
	all, err := s.ListSurgeries(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if since.IsZero() {
		return all, nil
	}
	out := make([]Surgery, 0, len(all))
	for _, sg := range all {
		if sg.Date.Before(since) {
			continue
		}
		out = append(out, sg)
	}
	return out, nil
}

func sortAllergies(items []Allergy) {
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Severity.Rank() != items[b].Severity.Rank() {
			return items[a].Severity.Rank() > items[b].Severity.Rank()
		}
		return dateDesc(items[a].DiagnosedDate, items[b].DiagnosedDate)
	})
}

func sortIllnesses(items []Illness) {
	sort.SliceStable(items, func(a, b int) bool {
		return dateDesc(items[a].DiagnosisDate, items[b].DiagnosisDate)
	})
}

func sortSurgeries(items []Surgery) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Date.After(items[b].Date)
	})
}

// dateDesc ordena fechas opcionales descendente; sin fecha va al final.
func dateDesc(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
