package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/jsricop/vitalgo/internal/adapters/auth/localjwt"
	"github.com/jsricop/vitalgo/internal/adapters/qrimage"
	"github.com/jsricop/vitalgo/internal/platform/logger"
	"github.com/jsricop/vitalgo/internal/router"
)

// @title VitalGo API
// @version 1.0
// @description Historial médico personal con acceso de emergencia vía QR.
// @BasePath /
func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	appLog := logger.NewFromEnv()

	secret := os.Getenv("JWT_SECRET")
	devMode := secret == ""
	if devMode {
		// sin secreto: el middleware acepta headers X-Debug-User-* y el
		// login firma con un secreto efímero; jamás usar así en producción
		secret = "dev-only-secret-do-not-ship"
		appLog.Warn("JWT_SECRET not set, running in dev mode", logger.Fields{})
	}

	tokens, err := localjwt.New(secret, localjwt.DefaultTTL)
	if err != nil {
		log.Fatalf("jwt setup: %v", err)
	}

	opts := router.Options{
		TokenIssuer:      tokens,
		QRImages:         qrimage.New(),
		EmergencyBaseURL: os.Getenv("EMERGENCY_BASE_URL"),
		Logger:           appLog,
	}
	if !devMode {
		opts.AuthVerifier = tokens
	}

	r := router.NewRouter(opts)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Printf("starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
