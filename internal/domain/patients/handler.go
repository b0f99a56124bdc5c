package patients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jsricop/vitalgo/internal/middleware"
	"github.com/jsricop/vitalgo/internal/ports/auth"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/patients/me", func(pr chi.Router) {
		pr.Get("/", getMyProfileHandler(svc))
		pr.Patch("/", patchMyProfileHandler(svc))
	})
}

type profileResponse struct {
	ID                    string       `json:"id"`
	UserID                string       `json:"user_id"`
	DocumentType          DocumentType `json:"document_type"`
	DocumentNumber        string       `json:"document_number"`
	BirthDate             string       `json:"birth_date"`
	Gender                Gender       `json:"gender"`
	BloodType             BloodType    `json:"blood_type"`
	EPS                   string       `json:"eps"`
	EmergencyContactName  string       `json:"emergency_contact_name"`
	EmergencyContactPhone string       `json:"emergency_contact_phone"`
	Address               string       `json:"address,omitempty"`
	City                  string       `json:"city,omitempty"`
	CreatedAt             time.Time    `json:"created_at"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

type patchProfileRequest struct {
	BloodType             *string `json:"blood_type"`
	EPS                   *string `json:"eps"`
	EmergencyContactName  *string `json:"emergency_contact_name"`
	EmergencyContactPhone *string `json:"emergency_contact_phone"`
	Address               *string `json:"address"`
	City                  *string `json:"city"`
}

func getMyProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requireOwnProfile(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toProfileResponse(p))
	}
}

func patchMyProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requireOwnProfile(w, r, svc)
		if !ok {
			return
		}

		var req patchProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.UpdateProfile(r.Context(), p.ID, ProfilePatch{
			BloodType:             req.BloodType,
			EPS:                   req.EPS,
			EmergencyContactName:  req.EmergencyContactName,
			EmergencyContactPhone: req.EmergencyContactPhone,
			Address:               req.Address,
			City:                  req.City,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toProfileResponse(updated))
	}
}

// requireOwnProfile exige un paciente autenticado con perfil existente.
func requireOwnProfile(w http.ResponseWriter, r *http.Request, svc *Service) (Patient, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Patient{}, false
	}
	if claims.Role != auth.RolePatient {
		http.Error(w, "forbidden", http.StatusForbidden)
		return Patient{}, false
	}

	p, err := svc.GetByUserID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "patient profile not found", http.StatusNotFound)
		return Patient{}, false
	}
	return p, true
}

func toProfileResponse(p Patient) profileResponse {
	return profileResponse{
		ID:                    p.ID,
		UserID:                p.UserID,
		DocumentType:          p.DocumentType,
		DocumentNumber:        p.DocumentNumber,
		BirthDate:             p.BirthDate.Format("2006-01-02"),
		Gender:                p.Gender,
		BloodType:             p.BloodType,
		EPS:                   p.EPS,
		EmergencyContactName:  p.EmergencyContactName,
		EmergencyContactPhone: p.EmergencyContactPhone,
		Address:               p.Address,
		City:                  p.City,
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
