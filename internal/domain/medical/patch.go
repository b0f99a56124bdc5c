package medical

import (
	"strings"
	"time"
)

// Patches tipados: un puntero nil significa "no tocar el campo".
// Reemplazan updates construidos dinámicamente campo a campo.

type AllergyPatch struct {
	Allergen      *string
	Severity      *string
	Symptoms      *string
	Treatment     *string
	DiagnosedDate *time.Time
	Notes         *string
}

type IllnessPatch struct {
	Name          *string
	DiagnosisDate *time.Time
	Treatment     *string
	Notes         *string
}

type SurgeryPatch struct {
	ProcedureName *string
	Surgeon       *string
	Hospital      *string
	Complications *string
	Notes         *string
}

func (p AllergyPatch) apply(a *Allergy) error {
	if p.Severity != nil {
		sev := Severity(strings.ToUpper(strings.TrimSpace(*p.Severity)))
		if sev.Rank() == 0 {
			return ErrInvalidInput
		}
		a.Severity = sev
	}
	if p.Allergen != nil {
		v := strings.TrimSpace(*p.Allergen)
		if v == "" {
			return ErrInvalidInput
		}
		a.Allergen = v
	}
	setString(&a.Symptoms, p.Symptoms)
	setString(&a.Treatment, p.Treatment)
	setString(&a.Notes, p.Notes)
	if p.DiagnosedDate != nil {
		d := *p.DiagnosedDate
		a.DiagnosedDate = &d
	}
	return nil
}

func (p IllnessPatch) apply(i *Illness) error {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		if v == "" {
			return ErrInvalidInput
		}
		i.Name = v
	}
	setString(&i.Treatment, p.Treatment)
	setString(&i.Notes, p.Notes)
	if p.DiagnosisDate != nil {
		d := *p.DiagnosisDate
		i.DiagnosisDate = &d
	}
	return nil
}

func (p SurgeryPatch) apply(s *Surgery) error {
	if p.ProcedureName != nil {
		v := strings.TrimSpace(*p.ProcedureName)
		if v == "" {
			return ErrInvalidInput
		}
		s.ProcedureName = v
	}
	setString(&s.Surgeon, p.Surgeon)
	setString(&s.Hospital, p.Hospital)
	setString(&s.Complications, p.Complications)
	setString(&s.Notes, p.Notes)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
