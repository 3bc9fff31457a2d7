package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/caseflow-io/caseflow/internal/authsvc"
	"github.com/caseflow-io/caseflow/internal/config"
	"github.com/caseflow-io/caseflow/internal/httpauth"
	"github.com/caseflow-io/caseflow/internal/server"
	"github.com/caseflow-io/caseflow/internal/vault"
	"github.com/caseflow-io/caseflow/pkg/logging"
)

func main() {
	cfg := config.LoadAuth()
	log := logging.NewWithLevel("auth-service", cfg.LogLevel)

	// 1. Postgres
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("connect to database")
	}
	cancel()
	log.Info().Msg("connected to postgres")

	// 2. HTTP surface
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpauth.RequestID(), httpauth.CORS())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "auth-service"})
	})

	h := &authsvc.Handler{
		Store:    authsvc.NewSQLStore(db),
		Secret:   cfg.JWTSecret,
		TokenTTL: cfg.JWTTTL,
		Log:      log,
	}
	h.Routes(r)

	// 3. TLS
	srv := server.New(r, cfg.Port, log)
	if cfg.UseTLS {
		cert, err := vault.GenerateSelfSignedCert("auth-service")
		if err != nil {
			log.Fatal().Err(err).Msg("generate TLS certificate")
		}
		srv.SetCertificate(cert)
		log.Info().Msg("internal TLS enabled")
	}

	// 4. Serve until signalled
	go func() {
		if err := srv.Listen(); err != nil {
			log.Fatal().Err(err).Msg("http server")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("auth service listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
