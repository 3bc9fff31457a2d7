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

	"github.com/caseflow-io/caseflow/internal/bus"
	"github.com/caseflow-io/caseflow/internal/cases"
	"github.com/caseflow-io/caseflow/internal/config"
	"github.com/caseflow-io/caseflow/internal/httpauth"
	"github.com/caseflow-io/caseflow/internal/server"
	"github.com/caseflow-io/caseflow/internal/vault"
	"github.com/caseflow-io/caseflow/pkg/logging"
	"github.com/caseflow-io/caseflow/pkg/schema"
)

func main() {
	cfg := config.LoadCase()
	log := logging.NewWithLevel("case-service", cfg.LogLevel)

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
	store := cases.NewSQLStore(db)

	// 2. Elasticsearch
	esCtx, cancelES := context.WithTimeout(context.Background(), 15*time.Second)
	search, err := cases.NewES(esCtx, cfg.ESAddr, log)
	cancelES()
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.ESAddr).Msg("connect to elasticsearch")
	}
	log.Info().Str("addr", cfg.ESAddr).Msg("connected to elasticsearch")

	// 3. Kafka consumer reacting to people events
	consumer := bus.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaClientID, cfg.KafkaGroupID, schema.PeopleTopics(), log)
	defer consumer.Close()
	reaction := cases.NewPersonConsumer(store, log)
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()
	consumerErr := make(chan error, 1)
	go func() {
		consumerErr <- consumer.Run(consumerCtx, reaction.Handle)
	}()
	log.Info().Strs("topics", schema.PeopleTopics()).Str("group", cfg.KafkaGroupID).Msg("consuming people events")

	// 4. HTTP surface
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), httpauth.RequestID(), httpauth.CORS())
	r.GET("/health", func(c *gin.Context) {
		esStatus := "ok"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := search.Ping(ctx); err != nil {
			esStatus = "unavailable"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "case-service", "elasticsearch": esStatus})
	})

	h := &cases.Handler{Store: store, Search: search, Log: log}
	h.Routes(r, cfg.JWTSecret)

	// 5. TLS
	srv := server.New(r, cfg.Port, log)
	if cfg.UseTLS {
		cert, err := vault.GenerateSelfSignedCert("case-service")
		if err != nil {
			log.Fatal().Err(err).Msg("generate TLS certificate")
		}
		srv.SetCertificate(cert)
		log.Info().Msg("internal TLS enabled")
	}

	// 6. Serve until signalled or the consumer dies
	go func() {
		if err := srv.Listen(); err != nil {
			log.Fatal().Err(err).Msg("http server")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("case service listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
		log.Info().Msg("shutting down")
	case err := <-consumerErr:
		log.Error().Err(err).Msg("event consumer stopped, shutting down")
	}

	stopConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
