package users

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

// TokenIssuer firma el JWT de sesión. Lo implementa localjwt.Tokens.
type TokenIssuer interface {
	Issue(claims auth.Claims) (string, time.Time, error)
}

func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service, issuer TokenIssuer) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register/patient", registerPatientHandler(svc, patientsSvc))
		ar.Post("/register/paramedic", registerParamedicHandler(svc))
		ar.Post("/login", loginHandler(svc, issuer))
		ar.Get("/me", meHandler(svc))
	})
}

// RegisterAdminRoutes monta la aprobación de paramédicos (solo admin).
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	r.Route("/admin/paramedics", func(pr chi.Router) {
		pr.Get("/pending", listPendingParamedicsHandler(svc))
		pr.Post("/{userID}/approve", approveParamedicHandler(svc))
		pr.Post("/{userID}/reject", rejectParamedicHandler(svc))
	})
}

type registerPatientRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`

	DocumentType          string `json:"document_type"`
	DocumentNumber        string `json:"document_number"`
	BirthDate             string `json:"birth_date"` // YYYY-MM-DD
	Gender                string `json:"gender"`
	BloodType             string `json:"blood_type"`
	EPS                   string `json:"eps"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
	Address               string `json:"address"`
	City                  string `json:"city"`
}

type registerParamedicRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`

	MedicalLicense  string `json:"medical_license"`
	Specialty       string `json:"specialty"`
	Institution     string `json:"institution"`
	YearsExperience int    `json:"years_experience"`
	LicenseExpiry   string `json:"license_expiry_date"` // YYYY-MM-DD
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
	Status    Status `json:"status"`
	CreatedAt string `json:"created_at"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	Role        Role         `json:"role"`
	User        userResponse `json:"user"`
}

// registerPatientHandler godoc
// @Summary Registrar paciente
// @Description Crea el usuario y su perfil médico en un solo paso.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body registerPatientRequest true "Datos de usuario y perfil"
// @Success 201 {object} userResponse
// @Failure 400 {string} string "invalid json / datos inválidos"
// @Failure 409 {string} string "email ya registrado"
// @Router /auth/register/patient [post]
func registerPatientHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerPatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		birthDate, err := time.Parse("2006-01-02", strings.TrimSpace(req.BirthDate))
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		u, err := svc.RegisterPatient(r.Context(), RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		})
		if err != nil {
			writeUserError(w, err)
			return
		}

		if _, err := patientsSvc.Create(r.Context(), u.ID, patients.CreateInput{
			DocumentType:          req.DocumentType,
			DocumentNumber:        req.DocumentNumber,
			BirthDate:             birthDate,
			Gender:                req.Gender,
			BloodType:             req.BloodType,
			EPS:                   req.EPS,
			EmergencyContactName:  req.EmergencyContactName,
			EmergencyContactPhone: req.EmergencyContactPhone,
			Address:               req.Address,
			City:                  req.City,
		}); err != nil {
			http.Error(w, "invalid patient profile", http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func registerParamedicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerParamedicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		expiry, err := time.Parse("2006-01-02", strings.TrimSpace(req.LicenseExpiry))
		if err != nil {
			http.Error(w, "license_expiry_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		u, err := svc.RegisterParamedic(r.Context(), RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		}, ParamedicInput{
			MedicalLicense:  req.MedicalLicense,
			Specialty:       req.Specialty,
			Institution:     req.Institution,
			YearsExperience: req.YearsExperience,
			LicenseExpiry:   expiry,
		})
		if err != nil {
			writeUserError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

// loginHandler godoc
// @Summary Iniciar sesión
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 401 {string} string "credenciales inválidas"
// @Failure 403 {string} string "cuenta pendiente de aprobación / rechazada"
// @Router /auth/login [post]
func loginHandler(svc *Service, issuer TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrPendingApproval):
				http.Error(w, "account pending approval", http.StatusForbidden)
			case errors.Is(err, ErrRejected):
				http.Error(w, "account rejected", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
			}
			return
		}

		token, expiresAt, err := issuer.Issue(auth.Claims{
			UserID: u.ID,
			Email:  u.Email,
			Role:   auth.Role(u.Role),
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, loginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
			Role:        u.Role,
			User:        toUserResponse(u),
		})
	}
}

func meHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.GetByID(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func listPendingParamedicsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		items, err := svc.ListPendingParamedics(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func approveParamedicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		u, err := svc.ApproveParamedic(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeUserError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func rejectParamedicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		u, err := svc.RejectParamedic(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeUserError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if claims.Role != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
