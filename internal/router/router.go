package router

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	mem "github.com/jsricop/vitalgo/internal/adapters/storage/memory"
	pg "github.com/jsricop/vitalgo/internal/adapters/storage/postgres"
	"github.com/jsricop/vitalgo/internal/domain/emergency"
	"github.com/jsricop/vitalgo/internal/domain/eps"
	"github.com/jsricop/vitalgo/internal/domain/medical"
	"github.com/jsricop/vitalgo/internal/domain/patients"
	"github.com/jsricop/vitalgo/internal/domain/users"
	"github.com/jsricop/vitalgo/internal/middleware"
	"github.com/jsricop/vitalgo/internal/platform/logger"
	"github.com/jsricop/vitalgo/internal/ports/auth"

	_ "github.com/jsricop/vitalgo/docs"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	TokenIssuer  users.TokenIssuer

	QRImages emergency.QRImageEncoder

	// BaseURL pública que se incrusta en los códigos QR.
	EmergencyBaseURL string

	Logger logger.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		usersRepo    users.Repository
		patientsRepo patients.Repository
		medicalRepo  medical.Repository
		epsRepo      eps.Repository
		grantsRepo   emergency.GrantRepository
		auditRepo    emergency.AuditLog
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		usersRepo = pg.NewUsersRepo(db)
		patientsRepo = pg.NewPatientsRepo(db)
		medicalRepo = pg.NewMedicalRepo(db)
		epsRepo = pg.NewEPSRepo(db)
		grantsRepo = pg.NewGrantsRepo(db)
		auditRepo = pg.NewAuditRepo(db)
	} else {
		usersRepo = mem.NewUsersRepo()
		patientsRepo = mem.NewPatientsRepo()
		medicalRepo = mem.NewMedicalRepo()
		epsRepo = mem.NewEPSRepo()
		grantsRepo = mem.NewGrantsRepo()
		auditRepo = mem.NewAuditRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(usersRepo)
	patientsSvc := patients.NewService(patientsRepo, usersSvc)
	medicalSvc := medical.NewService(medicalRepo)
	epsSvc := eps.NewService(epsRepo)
	emergencySvc := emergency.NewService(
		grantsRepo,
		auditRepo,
		patientsSvc,
		medicalSvc,
		opts.Logger,
		emergency.Config{},
	)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc, patientsSvc, opts.TokenIssuer)
	users.RegisterAdminRoutes(r, usersSvc)
	patients.RegisterRoutes(r, patientsSvc)
	medical.RegisterRoutes(r, medicalSvc, patientsSvc)
	eps.RegisterRoutes(r, epsSvc)
	eps.RegisterAdminRoutes(r, epsSvc)
	emergency.RegisterRoutes(r, emergencySvc, patientsSvc, opts.QRImages, emergency.HandlerConfig{
		BaseURL: opts.EmergencyBaseURL,
	})
	emergency.RegisterAdminRoutes(r, emergencySvc)

	return r
}
