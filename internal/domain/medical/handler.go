package medical

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jsricop/vitalgo/internal/domain/patients"
	"github.com/jsricop/vitalgo/internal/middleware"
	"github.com/jsricop/vitalgo/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service) {
	r.Route("/patients/me/allergies", func(ar chi.Router) {
		ar.Post("/", addAllergyHandler(svc, patientsSvc))
		ar.Get("/", listAllergiesHandler(svc, patientsSvc))
		ar.Patch("/{recordID}", patchAllergyHandler(svc, patientsSvc))
		ar.Delete("/{recordID}", deleteAllergyHandler(svc, patientsSvc))
	})

	r.Route("/patients/me/illnesses", func(ir chi.Router) {
		ir.Post("/", addIllnessHandler(svc, patientsSvc))
		ir.Get("/", listIllnessesHandler(svc, patientsSvc))
		ir.Patch("/{recordID}", patchIllnessHandler(svc, patientsSvc))
		ir.Post("/{recordID}/status", illnessStatusHandler(svc, patientsSvc))
		ir.Delete("/{recordID}", deleteIllnessHandler(svc, patientsSvc))
	})

	r.Route("/patients/me/surgeries", func(sr chi.Router) {
		sr.Post("/", addSurgeryHandler(svc, patientsSvc))
		sr.Get("/", listSurgeriesHandler(svc, patientsSvc))
		sr.Patch("/{recordID}", patchSurgeryHandler(svc, patientsSvc))
		sr.Delete("/{recordID}", deleteSurgeryHandler(svc, patientsSvc))
	})

	r.Get("/patients/me/summary", summaryHandler(svc, patientsSvc))
}

type allergyRequest struct {
	Allergen      string  `json:"allergen"`
	Severity      string  `json:"severity" enums:"MILD,MODERATE,SEVERE,CRITICAL"`
	Symptoms      string  `json:"symptoms"`
	Treatment     string  `json:"treatment"`
	DiagnosedDate *string `json:"diagnosed_date"` // YYYY-MM-DD
	Notes         string  `json:"notes"`
}

type allergyPatchRequest struct {
	Allergen      *string `json:"allergen"`
	Severity      *string `json:"severity"`
	Symptoms      *string `json:"symptoms"`
	Treatment     *string `json:"treatment"`
	DiagnosedDate *string `json:"diagnosed_date"`
	Notes         *string `json:"notes"`
}

type allergyResponse struct {
	ID            string     `json:"id"`
	Allergen      string     `json:"allergen"`
	Severity      Severity   `json:"severity"`
	Symptoms      string     `json:"symptoms"`
	Treatment     string     `json:"treatment,omitempty"`
	DiagnosedDate *time.Time `json:"diagnosed_date,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type illnessRequest struct {
	Name          string  `json:"name"`
	Status        string  `json:"status" enums:"ACTIVE,RESOLVED,CHRONIC"`
	DiagnosisDate *string `json:"diagnosis_date"` // YYYY-MM-DD
	Treatment     string  `json:"treatment"`
	Notes         string  `json:"notes"`
}

type illnessPatchRequest struct {
	Name          *string `json:"name"`
	DiagnosisDate *string `json:"diagnosis_date"`
	Treatment     *string `json:"treatment"`
	Notes         *string `json:"notes"`
}

type illnessStatusRequest struct {
	Status string `json:"status" enums:"ACTIVE,RESOLVED,CHRONIC"`
}

type illnessResponse struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Status        IllnessStatus `json:"status"`
	DiagnosisDate *time.Time    `json:"diagnosis_date,omitempty"`
	Treatment     string        `json:"treatment,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type surgeryRequest struct {
	ProcedureName string `json:"procedure_name"`
	Date          string `json:"date"` // YYYY-MM-DD
	Surgeon       string `json:"surgeon"`
	Hospital      string `json:"hospital"`
	Complications string `json:"complications"`
	Notes         string `json:"notes"`
}

type surgeryPatchRequest struct {
	ProcedureName *string `json:"procedure_name"`
	Surgeon       *string `json:"surgeon"`
	Hospital      *string `json:"hospital"`
	Complications *string `json:"complications"`
	Notes         *string `json:"notes"`
}

type surgeryResponse struct {
	ID            string    `json:"id"`
	ProcedureName string    `json:"procedure_name"`
	Date          string    `json:"date"`
	Surgeon       string    `json:"surgeon,omitempty"`
	Hospital      string    `json:"hospital,omitempty"`
	Complications string    `json:"complications,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type summaryResponse struct {
	Allergies []allergyResponse `json:"allergies"`
	Illnesses []illnessResponse `json:"illnesses"`
	Surgeries []surgeryResponse `json:"surgeries"`
}

// ---- alergias ----

// addAllergyHandler godoc
// @Summary Registrar alergia
// @Description Agrega una alergia al historial del paciente autenticado.
// @Tags medical
// @Accept json
// @Produce json
// @Param payload body allergyRequest true "Datos de la alergia"
// @Success 201 {object} allergyResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "patient profile not found"
// @Router /patients/me/allergies [post]
func addAllergyHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		var req allergyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		diagnosed, err := parseOptionalDate(req.DiagnosedDate)
		if err != nil {
			http.Error(w, "diagnosed_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		a, err := svc.AddAllergy(r.Context(), p.ID, AllergyInput{
			Allergen:      req.Allergen,
			Severity:      req.Severity,
			Symptoms:      req.Symptoms,
			Treatment:     req.Treatment,
			DiagnosedDate: diagnosed,
			Notes:         req.Notes,
		})
		if err != nil {
			writeMedicalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAllergyResponse(a))
	}
}

func listAllergiesHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		items, err := svc.ListAllergies(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]allergyResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAllergyResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func patchAllergyHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		var req allergyPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		diagnosed, err := parseOptionalDate(req.DiagnosedDate)
		if err != nil {
			http.Error(w, "diagnosed_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		a, err := svc.UpdateAllergy(r.Context(), p.ID, chi.URLParam(r, "recordID"), AllergyPatch{
			Allergen:      req.Allergen,
			Severity:      req.Severity,
			Symptoms:      req.Symptoms,
			Treatment:     req.Treatment,
			DiagnosedDate: diagnosed,
			Notes:         req.Notes,
		})
		if err != nil {
			writeMedicalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAllergyResponse(a))
	}
}

func deleteAllergyHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}
		if err := svc.DeleteAllergy(r.Context(), p.ID, chi.URLParam(r, "recordID")); err != nil {
			writeMedicalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ---- enfermedades ----

func addIllnessHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		var req illnessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		diagnosis, err := parseOptionalDate(req.DiagnosisDate)
		if err != nil {
			http.Error(w, "diagnosis_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		i, err := svc.AddIllness(r.Context(), p.ID, IllnessInput{
			Name:          req.Name,
			Status:        req.Status,
			DiagnosisDate: diagnosis,
			Treatment:     req.Treatment,
			Notes:         req.Notes,
		})
		if err != nil {
			writeMedicalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toIllnessResponse(i))
	}
}

func listIllnessesHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		items, err := svc.ListIllnesses(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]illnessResponse, 0, len(items))
		for _, i := range items {
			out = append(out, toIllnessResponse(i))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func patchIllnessHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		var req illnessPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		diagnosis, err := parseOptionalDate(req.DiagnosisDate)
		if err != nil {
			http.Error(w, "diagnosis_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		i, err := svc.UpdateIllness(r.Context(), p.ID, chi.URLParam(r, "recordID"), IllnessPatch{
			Name:          req.Name,
			DiagnosisDate: diagnosis,
			Treatment:     req.Treatment,
			Notes:         req.Notes,
		})
		if err != nil {
			writeMedicalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIllnessResponse(i))
	}
}

func illnessStatusHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		var req illnessStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		i, err := svc.UpdateIllnessStatus(r.Context(), p.ID, chi.URLParam(r, "recordID"), req.Status)
		if err != nil {
			writeMedicalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toIllnessResponse(i))
	}
}

func deleteIllnessHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}
		if err := svc.DeleteIllness(r.Context(), p.ID, chi.URLParam(r, "recordID")); err != nil {
			writeMedicalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ---- cirugías ----

func addSurgeryHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		var req surgeryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		sg, err := svc.AddSurgery(r.Context(), p.ID, SurgeryInput{
			ProcedureName: req.ProcedureName,
			Date:          date,
			Surgeon:       req.Surgeon,
			Hospital:      req.Hospital,
			Complications: req.Complications,
			Notes:         req.Notes,
		})
		if err != nil {
			writeMedicalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSurgeryResponse(sg))
	}
}

func listSurgeriesHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		items, err := svc.ListSurgeries(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]surgeryResponse, 0, len(items))
		for _, sg := range items {
			out = append(out, toSurgeryResponse(sg))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func patchSurgeryHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		var req surgeryPatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sg, err := svc.UpdateSurgery(r.Context(), p.ID, chi.URLParam(r, "recordID"), SurgeryPatch{
			ProcedureName: req.ProcedureName,
			Surgeon:       req.Surgeon,
			Hospital:      req.Hospital,
			Complications: req.Complications,
			Notes:         req.Notes,
		})
		if err != nil {
			writeMedicalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSurgeryResponse(sg))
	}
}

func deleteSurgeryHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}
		if err := svc.DeleteSurgery(r.Context(), p.ID, chi.URLParam(r, "recordID")); err != nil {
			writeMedicalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func summaryHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatient(w, r, patientsSvc)
		if !ok {
			return
		}

		allergies, err := svc.ListAllergies(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		illnesses, err := svc.ListIllnesses(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		surgeries, err := svc.ListSurgeries(r.Context(), p.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := summaryResponse{
			Allergies: make([]allergyResponse, 0, len(allergies)),
			Illnesses: make([]illnessResponse, 0, len(illnesses)),
			Surgeries: make([]surgeryResponse, 0, len(surgeries)),
		}
		for _, a := range allergies {
			out.Allergies = append(out.Allergies, toAllergyResponse(a))
		}
		for _, i := range illnesses {
			out.Illnesses = append(out.Illnesses, toIllnessResponse(i))
		}
		for _, sg := range surgeries {
			out.Surgeries = append(out.Surgeries, toSurgeryResponse(sg))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func requirePatient(w http.ResponseWriter, r *http.Request, patientsSvc *patients.Service) (patients.Patient, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return patients.Patient{}, false
	}
	if claims.Role != auth.RolePatient {
		http.Error(w, "forbidden", http.StatusForbidden)
		return patients.Patient{}, false
	}

	p, err := patientsSvc.GetByUserID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "patient profile not found", http.StatusNotFound)
		return patients.Patient{}, false
	}
	return p, true
}

func writeMedicalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func toAllergyResponse(a Allergy) allergyResponse {
	return allergyResponse{
		ID:            a.ID,
		Allergen:      a.Allergen,
		Severity:      a.Severity,
		Symptoms:      a.Symptoms,
		Treatment:     a.Treatment,
		DiagnosedDate: a.DiagnosedDate,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toIllnessResponse(i Illness) illnessResponse {
	return illnessResponse{
		ID:            i.ID,
		Name:          i.Name,
		Status:        i.Status,
		DiagnosisDate: i.DiagnosisDate,
		Treatment:     i.Treatment,
		Notes:         i.Notes,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

func toSurgeryResponse(sg Surgery) surgeryResponse {
	return surgeryResponse{
		ID:            sg.ID,
		ProcedureName: sg.ProcedureName,
		Date:          sg.Date.Format("2006-01-02"),
		Surgeon:       sg.Surgeon,
		Hospital:      sg.Hospital,
		Complications: sg.Complications,
		Notes:         sg.Notes,
		CreatedAt:     sg.CreatedAt,
		UpdatedAt:     sg.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
