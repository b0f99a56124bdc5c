package eps

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

// RegisterRoutes monta el catálogo público (para formularios de registro).
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/eps", listHandler(svc))
}

// RegisterAdminRoutes monta el mantenimiento del catálogo (solo admin).
func RegisterAdminRoutes(r chi.Router, svc *Service) {
	r.Route("/admin/eps", func(er chi.Router) {
		er.Get("/", listHandler(svc))
		er.Post("/", createHandler(svc))
		er.Patch("/{epsID}", patchHandler(svc))
	})
}

type createRequest struct {
	Name   string `json:"name"`
	Code   string `json:"code"`
	Regime string `json:"regime" enums:"contributivo,subsidiado,ambos"`
}

type patchRequest struct {
	Name   *string `json:"name"`
	Regime *string `json:"regime"`
	Status *string `json:"status"`
}

type epsResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	Regime    RegimeType `json:"regime"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// listHandler godoc
// @Summary Listar EPS
// @Description Catálogo de EPS colombianas para los formularios de registro.
// @Tags eps
// @Produce json
// @Success 200 {array} epsResponse
// @Router /eps [get]
func listHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]epsResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEPSResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func createHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.Create(r.Context(), CreateInput{
			Name:   req.Name,
			Code:   req.Code,
			Regime: req.Regime,
		})
		if err != nil {
			writeEPSError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEPSResponse(e))
	}
}

func patchHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireAdmin(w, r) {
			return
		}

		var req patchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.Update(r.Context(), chi.URLParam(r, "epsID"), Patch{
			Name:   req.Name,
			Regime: req.Regime,
			Status: req.Status,
		})
		if err != nil {
			writeEPSError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEPSResponse(e))
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

func writeEPSError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrCodeTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEPSResponse(e EPS) epsResponse {
	return epsResponse{
		ID:        e.ID,
		Name:      e.Name,
		Code:      e.Code,
		Regime:    e.Regime,
		Status:    e.Status,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
