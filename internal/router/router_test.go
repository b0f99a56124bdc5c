package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jsricop/vitalgo/internal/adapters/auth/localjwt"
	"github.com/jsricop/vitalgo/internal/adapters/qrimage"
	"github.com/jsricop/vitalgo/internal/platform/logger"
	"github.com/jsricop/vitalgo/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tokens, err := localjwt.New("test-secret-at-least-16", localjwt.DefaultTTL)
	if err != nil {
		t.Fatalf("localjwt.New: %v", err)
	}

	return httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier:     nil, // modo dev: X-Debug-User-ID / X-Debug-User-Role
		TokenIssuer:      tokens,
		QRImages:         qrimage.New(),
		EmergencyBaseURL: "https://vitalgo.test",
		Logger:           logger.Nop(),
	}))
}

func TestHTTP_EndToEnd_EmergencyAccess(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	// 1) Registro de paciente (usuario + perfil en un paso)
	userID := registerPatient(t, ts.URL, "ana@example.com")

	// 2) El paciente carga una alergia crítica
	{
		st, body := doReq(t, ts.URL, "POST", "/patients/me/allergies", userID, "", map[string]any{
			"allergen": "penicilina",
			"severity": "CRITICAL",
			"symptoms": "anafilaxia",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 create allergy, got %d body=%s", st, string(body))
		}
	}

	// 3) Genera su código QR
	token, qrImage := generateQR(t, ts.URL, userID, 0)
	if !strings.HasPrefix(qrImage, "data:image/png;base64,") {
		t.Fatalf("expected embedded png data url, got %q", qrImage[:min(len(qrImage), 40)])
	}

	// 4) Paramédico presenta el token y recibe el historial
	{
		st, body := doReq(t, ts.URL, "POST", "/emergency/"+token+"/access", "medic-1", "paramedic", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 emergency access, got %d body=%s", st, string(body))
		}
		var resp struct {
			AccessGranted bool   `json:"access_granted"`
			Reason        string `json:"reason"`
			Data          *struct {
				Patient struct {
					FullName  string `json:"full_name"`
					BloodType string `json:"blood_type"`
				} `json:"patient"`
				Allergies []struct {
					Allergen string `json:"allergen"`
					Severity string `json:"severity"`
				} `json:"allergies"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &resp); err != nil {
			t.Fatalf("unmarshal access response: %v body=%s", err, string(body))
		}
		if !resp.AccessGranted || resp.Reason != "granted" {
			t.Fatalf("expected granted, got %+v", resp)
		}
		if resp.Data == nil || resp.Data.Patient.FullName != "Ana Gómez" {
			t.Fatalf("expected patient identity, got %+v", resp.Data)
		}
		if len(resp.Data.Allergies) != 1 || resp.Data.Allergies[0].Allergen != "penicilina" {
			t.Fatalf("expected disclosed allergy, got %+v", resp.Data)
		}
	}

	// 5) Escaneo anónimo: negado pero con respuesta 200 estructurada
	{
		st, body := doReq(t, ts.URL, "POST", "/emergency/"+token+"/access", "", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 anonymous access, got %d body=%s", st, string(body))
		}
		var resp struct {
			AccessGranted bool   `json:"access_granted"`
			Reason        string `json:"reason"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.AccessGranted || resp.Reason != "insufficient_role" {
			t.Fatalf("expected anonymous denial, got %+v", resp)
		}
	}

	// 6) Otro paciente no puede revocar el grant ajeno
	{
		intruderID := registerPatient(t, ts.URL, "otro@example.com")
		st, _ := doReq(t, ts.URL, "POST", "/qr/"+token+"/revoke", intruderID, "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 revoking foreign grant, got %d", st)
		}
	}

	// 7) El dueño revoca; el grant queda inactivo con marca de revocación
	{
		st, body := doReq(t, ts.URL, "POST", "/qr/"+token+"/revoke", userID, "", nil)
		if st != http.StatusNoContent {
			t.Fatalf("expected 204 revoke, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/qr/me", userID, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list grants, got %d body=%s", st, string(body))
		}
		var grants []struct {
			QRToken   string  `json:"qr_token"`
			Active    bool    `json:"is_active"`
			RevokedAt *string `json:"revoked_at"`
		}
		if err := json.Unmarshal(body, &grants); err != nil {
			t.Fatalf("unmarshal grants: %v body=%s", err, string(body))
		}
		found := false
		for _, g := range grants {
			if g.QRToken == token {
				found = true
				if g.Active || g.RevokedAt == nil {
					t.Fatalf("expected inactive grant with revoked_at, got %+v", g)
				}
			}
		}
		if !found {
			t.Fatalf("revoked grant missing from /qr/me: %+v", grants)
		}
	}

	// 8) El token revocado deja de funcionar de inmediato
	{
		st, body := doReq(t, ts.URL, "POST", "/emergency/"+token+"/access", "medic-1", "paramedic", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 after revoke, got %d body=%s", st, string(body))
		}
		var resp struct {
			AccessGranted bool   `json:"access_granted"`
			Reason        string `json:"reason"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.AccessGranted || resp.Reason != "inactive" {
			t.Fatalf("expected inactive denial, got %+v", resp)
		}
	}

	// 9) Un admin revisa la auditoría: un registro por presentación
	{
		st, body := doReq(t, ts.URL, "GET", "/admin/qr/"+token+"/logs", "admin-1", "admin", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 audit report, got %d body=%s", st, string(body))
		}
		var entries []struct {
			AccessRole    string `json:"access_role"`
			Success       bool   `json:"success"`
			FailureReason string `json:"failure_reason"`
		}
		if err := json.Unmarshal(body, &entries); err != nil {
			t.Fatalf("unmarshal audit entries: %v body=%s", err, string(body))
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 audit entries, got %d: %+v", len(entries), entries)
		}
	}
}

func TestHTTP_ParamedicApprovalFlow(t *testing.T) {
	ts := newTestServer(t)
	defer ts.Close()

	// registro de paramédico => pending
	var medicID string
	{
		st, body := doReq(t, ts.URL, "POST", "/auth/register/paramedic", "", "", map[string]any{
			"email":               "medico@example.com",
			"password":            "clave-segura-99",
			"first_name":          "Luis",
			"last_name":           "Rojas",
			"medical_license":     "LIC-1234",
			"license_expiry_date": "2028-06-30",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 register paramedic, got %d body=%s", st, string(body))
		}
		var resp struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.Status != "pending" {
			t.Fatalf("expected pending status, got %q", resp.Status)
		}
		medicID = resp.ID
	}

	// login bloqueado mientras está pending
	{
		st, _ := doReq(t, ts.URL, "POST", "/auth/login", "", "", map[string]any{
			"email":    "medico@example.com",
			"password": "clave-segura-99",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 login while pending, got %d", st)
		}
	}

	// solo un admin puede aprobar
	{
		st, _ := doReq(t, ts.URL, "POST", "/admin/paramedics/"+medicID+"/approve", "user-x", "", nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 approve by non-admin, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/admin/paramedics/"+medicID+"/approve", "admin-1", "admin", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
	}

	// ahora el login devuelve un JWT
	{
		st, body := doReq(t, ts.URL, "POST", "/auth/login", "", "", map[string]any{
			"email":    "medico@example.com",
			"password": "clave-segura-99",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 login after approval, got %d body=%s", st, string(body))
		}
		var resp struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			Role        string `json:"role"`
		}
		_ = json.Unmarshal(body, &resp)
		if resp.AccessToken == "" || resp.TokenType != "bearer" || resp.Role != "paramedic" {
			t.Fatalf("unexpected login response: %+v", resp)
		}
	}
}

func registerPatient(t *testing.T, baseURL, email string) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/auth/register/patient", "", "", map[string]any{
		"email":                   email,
		"password":                "super-secreta-1",
		"first_name":              "Ana",
		"last_name":               "Gómez",
		"document_type":           "CC",
		"document_number":         "1020304050",
		"birth_date":              "1990-05-20",
		"gender":                  "F",
		"blood_type":              "O+",
		"eps":                     "SURA",
		"emergency_contact_name":  "Marta Gómez",
		"emergency_contact_phone": "3007654321",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 register patient, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("register patient: missing id body=%s", string(body))
	}
	return resp.ID
}

func generateQR(t *testing.T, baseURL, userID string, expiresInDays int) (string, string) {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/qr/generate", userID, "", map[string]any{
		"expires_in_days": expiresInDays,
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 generate qr, got %d body=%s", st, string(body))
	}

	var resp struct {
		QRToken   string `json:"qr_token"`
		QRImage   string `json:"qr_image"`
		AccessURL string `json:"access_url"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.QRToken == "" {
		t.Fatalf("generate qr: missing token body=%s", string(body))
	}
	if !strings.Contains(resp.AccessURL, resp.QRToken) {
		t.Fatalf("access url must embed token, got %q", resp.AccessURL)
	}
	return resp.QRToken, resp.QRImage
}

func doReq(t *testing.T, baseURL, method, path, debugUserID, debugRole string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}
	if debugRole != "" {
		req.Header.Set("X-Debug-User-Role", debugRole)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
