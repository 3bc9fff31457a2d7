package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/caseflow-io/caseflow/internal/bus"
	"github.com/caseflow-io/caseflow/internal/cache"
	"github.com/caseflow-io/caseflow/internal/config"
	"github.com/caseflow-io/caseflow/internal/httpauth"
	"github.com/caseflow-io/caseflow/internal/people"
	"github.com/caseflow-io/caseflow/internal/server"
	"github.com/caseflow-io/caseflow/internal/vault"
	"github.com/caseflow-io/caseflow/pkg/logging"
)

func main() {
	cfg := config.LoadPeople()
	log := logging.NewWithLevel("people-service", cfg.LogLevel)

	// 1. Postgres
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		log.Fatal().Err(err).Msg("connect to database")
	}
	cancelPing()
	log.Info().Msg("connected to postgres")

	// 2. Redis
	redisCtx, cancelRedis := context.WithTimeout(context.Background(), 10*time.Second)
	redis, err := cache.NewRedis(redisCtx, cfg.RedisAddr)
	cancelRedis()
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connect to redis")
	}
	defer redis.Close()
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	// 3. Kafka producer
	publisher := bus.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaClientID, log)
	defer publisher.Close()

	svc := people.NewService(people.NewSQLStore(db), redis, publisher, log)

	// 4. HTTP surface
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpauth.RequestID(), httpauth.CORS())
	r.GET("/health", func(c *gin.Context) {
		redisStatus := "ok"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, err := redis.Get(ctx, "health:probe"); err != nil && !errors.Is(err, cache.ErrMiss) {
			redisStatus = "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "people-service", "redis": redisStatus})
	})

	h := &people.Handler{Service: svc}
	h.Routes(r, cfg.JWTSecret)

	// 5. TLS
	srv := server.New(r, cfg.Port, log)
	if cfg.UseTLS {
		cert, err := vault.GenerateSelfSignedCert("people-service")
		if err != nil {
			log.Fatal().Err(err).Msg("generate TLS certificate")
		}
		srv.SetCertificate(cert)
		log.Info().Msg("internal TLS enabled")
	}

	// 6. Serve until signalled
	go func() {
		if err := srv.Listen(); err != nil {
			log.Fatal().Err(err).Msg("http server")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("people service listening")

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
