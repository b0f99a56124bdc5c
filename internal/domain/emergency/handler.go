package emergency

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

// QRImageEncoder produce la imagen escaneable de una URL de acceso.
// Lo implementa el adaptador qrimage.
type QRImageEncoder interface {
	DataURL(content string) (string, error)
}

// HandlerConfig parametriza la capa HTTP del módulo de emergencia.
type HandlerConfig struct {
	// BaseURL prefija la URL embebida en el código QR,
	// p. ej. https://vitalgo.example.com
	BaseURL string
}

// RegisterRoutes monta emisión/consulta/revocación de QR (autenticado) y el
// endpoint de presentación (abierto: también responde a anónimos, negando).
func RegisterRoutes(r chi.Router, svc *Service, patientsSvc *patients.Service, qr QRImageEncoder, cfg HandlerConfig) {
	r.Route("/qr", func(qrr chi.Router) {
		qrr.Post("/generate", generateHandler(svc, patientsSvc, qr, cfg))
		qrr.Get("/me", listMineHandler(svc, patientsSvc))
		qrr.Post("/{token}/revoke", revokeHandler(svc, patientsSvc))
	})

	r.Post("/emergency/{token}/access", accessHandler(svc))
}

// RegisterAdminRoutes monta el reporte de auditoría (solo admin).
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	r.Get("/admin/qr/{token}/logs", accessLogHandler(svc))
}

type generateRequest struct {
	// ExpiresInDays: 0 u omitido = sin expiración.
	ExpiresInDays int `json:"expires_in_days"`
}

type grantResponse struct {
	QRToken        string     `json:"qr_token"`
	Active         bool       `json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	RevokedAt      *time.Time `json:"revoked_at,omitempty"`
	AccessCount    int64      `json:"access_count"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	AccessURL      string     `json:"access_url"`
	QRImage        string     `json:"qr_image,omitempty"`
}

type accessResponse struct {
	AccessGranted bool            `json:"access_granted"`
	Reason        Reason          `json:"reason"`
	Data          *disclosureBody `json:"data,omitempty"`
}

type disclosureBody struct {
	Tier    Tier        `json:"tier"`
	Patient patientBody `json:"patient"`

	Allergies []allergyBody `json:"allergies"`
	Illnesses []illnessBody `json:"illnesses"`
	Surgeries []surgeryBody `json:"surgeries"`
}

type patientBody struct {
	FullName              string `json:"full_name"`
	DocumentType          string `json:"document_type,omitempty"`
	DocumentNumber        string `json:"document_number,omitempty"`
	Age                   int    `json:"age"`
	Gender                string `json:"gender"`
	BloodType             string `json:"blood_type"`
	EPS                   string `json:"eps,omitempty"`
	EmergencyContactName  string `json:"emergency_contact_name"`
	EmergencyContactPhone string `json:"emergency_contact_phone"`
}

type allergyBody struct {
	Allergen      string     `json:"allergen"`
	Severity      string     `json:"severity"`
	Symptoms      string     `json:"symptoms"`
	Treatment     string     `json:"treatment,omitempty"`
	DiagnosedDate *time.Time `json:"diagnosed_date,omitempty"`
}

type illnessBody struct {
	Name          string     `json:"name"`
	Status        string     `json:"status"`
	DiagnosisDate *time.Time `json:"diagnosis_date,omitempty"`
	Treatment     string     `json:"treatment,omitempty"`
}

type surgeryBody struct {
	ProcedureName string `json:"procedure_name"`
	Date          string `json:"date"`
	Surgeon       string `json:"surgeon,omitempty"`
	Hospital      string `json:"hospital,omitempty"`
}

type accessLogResponse struct {
	ID            string    `json:"id"`
	AccessedBy    string    `json:"accessed_by,omitempty"`
	AccessRole    Role      `json:"access_role"`
	Timestamp     time.Time `json:"timestamp"`
	Success       bool      `json:"success"`
	FailureReason Reason    `json:"failure_reason,omitempty"`
	SourceAddr    string    `json:"source_addr,omitempty"`
}

// generateHandler godoc
// @Summary Generar código QR de emergencia
// @Description Emite un grant nuevo para el paciente autenticado. Cada
// @Description llamada crea un token fresco; los grants previos siguen vivos.
// @Tags emergency
// @Accept json
// @Produce json
// @Param payload body generateRequest true "Expiración opcional en días"
// @Success 201 {object} grantResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /qr/generate [post]
func generateHandler(svc *Service, patientsSvc *patients.Service, qr QRImageEncoder, cfg HandlerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatientProfile(w, r, patientsSvc)
		if !ok {
			return
		}

		var req generateRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		if req.ExpiresInDays < 0 {
			http.Error(w, "expires_in_days must be >= 0", http.StatusBadRequest)
			return
		}

		g, err := svc.Issue(r.Context(), p.ID, time.Duration(req.ExpiresInDays)*24*time.Hour)
		if err != nil {
			writeEmergencyError(w, err)
			return
		}

		resp := toGrantResponse(g, cfg.BaseURL)
		if qr != nil {
			img, err := qr.DataURL(resp.AccessURL)
			if err != nil {
				// el grant ya existe; devolverlo sin imagen antes que fallar
				writeJSON(w, http.StatusCreated, resp)
				return
			}
			resp.QRImage = img
		}
		writeJSON(w, http.StatusCreated, resp)
	}
}

func listMineHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := requirePatientProfile(w, r, patientsSvc)
		if !ok {
			return
		}

		items, err := svc.ListByPatient(r.Context(), p.ID)
		if err != nil {
			writeEmergencyError(w, err)
			return
		}
		out := make([]grantResponse, 0, len(items))
		for _, g := range items {
			out = append(out, toGrantResponse(g, ""))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// revokeHandler permite revocar al paciente dueño del grant o a un admin.
func revokeHandler(svc *Service, patientsSvc *patients.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		token := chi.URLParam(r, "token")

		switch claims.Role {
		case auth.RoleAdmin:
			// sin chequeo de dueño

		case auth.RolePatient:
			g, err := svc.Get(r.Context(), token)
			if err != nil {
				writeEmergencyError(w, err)
				return
			}
			p, err := patientsSvc.GetByUserID(r.Context(), claims.UserID)
			if err != nil || p.ID != g.PatientID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

		default:
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := svc.Revoke(r.Context(), token); err != nil {
			writeEmergencyError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// accessHandler godoc
// @Summary Presentar token de emergencia
// @Description Evalúa el token y revela el historial si el caller está
// @Description autorizado. Concedido o negado, siempre responde 200 con el
// @Description desenlace; 503 solo ante fallas de infraestructura.
// @Tags emergency
// @Produce json
// @Param token path string true "Token del QR"
// @Success 200 {object} accessResponse
// @Failure 503 {string} string "servicio no disponible"
// @Router /emergency/{token}/access [post]
func accessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := Caller{Role: RoleAnonymous, SourceAddr: r.RemoteAddr}
		if claims, ok := middleware.GetClaims(r.Context()); ok {
			caller.Role = Role(claims.Role)
			caller.UserID = claims.UserID
		}

		decision, err := svc.Present(r.Context(), chi.URLParam(r, "token"), caller)
		if err != nil {
			// la negación ya quedó decidida y (salvo audit_failure) auditada
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		resp := accessResponse{
			AccessGranted: decision.Granted,
			Reason:        decision.Reason,
		}
		if decision.Payload != nil {
			body := toDisclosureBody(*decision.Payload)
			resp.Data = &body
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func accessLogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || claims.Role != auth.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		entries, err := svc.AccessLogFor(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			writeEmergencyError(w, err)
			return
		}
		out := make([]accessLogResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, accessLogResponse{
				ID:            e.ID,
				AccessedBy:    e.AccessedBy,
				AccessRole:    e.AccessRole,
				Timestamp:     e.Timestamp,
				Success:       e.Success,
				FailureReason: e.FailureReason,
				SourceAddr:    e.SourceAddr,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func requirePatientProfile(w http.ResponseWriter, r *http.Request, patientsSvc *patients.Service) (patients.Patient, bool) {
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

func writeEmergencyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrAuditFailure):
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toGrantResponse(g Grant, baseURL string) grantResponse {
	return grantResponse{
		QRToken:        g.Token,
		Active:         g.Active,
		ExpiresAt:      g.ExpiresAt,
		RevokedAt:      g.RevokedAt,
		AccessCount:    g.AccessCount,
		LastAccessedAt: g.LastAccessedAt,
		CreatedAt:      g.CreatedAt,
		AccessURL:      strings.TrimRight(baseURL, "/") + "/emergency/" + g.Token + "/access",
	}
}

func toDisclosureBody(p DisclosurePayload) disclosureBody {
	body := disclosureBody{
		Tier: p.Tier,
		Patient: patientBody{
			FullName:              p.Patient.FullName,
			DocumentType:          string(p.Patient.DocumentType),
			DocumentNumber:        p.Patient.DocumentNumber,
			Age:                   p.Patient.Age,
			Gender:                string(p.Patient.Gender),
			BloodType:             string(p.Patient.BloodType),
			EPS:                   p.Patient.EPS,
			EmergencyContactName:  p.Patient.EmergencyContactName,
			EmergencyContactPhone: p.Patient.EmergencyContactPhone,
		},
		Allergies: make([]allergyBody, 0, len(p.Allergies)),
		Illnesses: make([]illnessBody, 0, len(p.Illnesses)),
		Surgeries: make([]surgeryBody, 0, len(p.Surgeries)),
	}
	for _, a := range p.Allergies {
		body.Allergies = append(body.Allergies, allergyBody{
			Allergen:      a.Allergen,
			Severity:      a.Severity,
			Symptoms:      a.Symptoms,
			Treatment:     a.Treatment,
			DiagnosedDate: a.DiagnosedDate,
		})
	}
	for _, i := range p.Illnesses {
		body.Illnesses = append(body.Illnesses, illnessBody{
			Name:          i.Name,
			Status:        i.Status,
			DiagnosisDate: i.DiagnosisDate,
			Treatment:     i.Treatment,
		})
	}
	for _, sg := range p.Surgeries {
		body.Surgeries = append(body.Surgeries, surgeryBody{
			ProcedureName: sg.ProcedureName,
			Date:          sg.Date.Format("2006-01-02"),
			Surgeon:       sg.Surgeon,
			Hospital:      sg.Hospital,
		})
	}
	return body
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
