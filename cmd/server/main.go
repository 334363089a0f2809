package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	attendancehandler "agorax/internal/attendance/handler"
	attendanceservice "agorax/internal/attendance/service"
	attendancestore "agorax/internal/attendance/store"
	directoryhandler "agorax/internal/directory/handler"
	directoryservice "agorax/internal/directory/service"
	condominiumstore "agorax/internal/directory/store/condominium"
	ownerstore "agorax/internal/directory/store/owner"
	"agorax/internal/identity"
	meetinghandler "agorax/internal/meeting/handler"
	meetingmetrics "agorax/internal/meeting/metrics"
	meetingservice "agorax/internal/meeting/service"
	agendastore "agorax/internal/meeting/store/agenda"
	meetingstore "agorax/internal/meeting/store/meeting"
	"agorax/internal/platform/config"
	"agorax/internal/platform/httpserver"
	"agorax/internal/platform/logger"
	"agorax/internal/platform/middleware"
	"agorax/internal/quorum"
	"agorax/internal/voting/codec"
	votinghandler "agorax/internal/voting/handler"
	votingmetrics "agorax/internal/voting/metrics"
	votingservice "agorax/internal/voting/service"
	votestore "agorax/internal/voting/store"
	"agorax/pkg/platform/audit"
	auditkafka "agorax/pkg/platform/audit/kafka"
	auditpublisher "agorax/pkg/platform/audit/publisher"
	auditmemory "agorax/pkg/platform/audit/store/memory"
	auditpostgres "agorax/pkg/platform/audit/store/postgres"
)

// stores groups the persistence selection: postgres when a DSN is set, redis
// for the high-churn registries when an address is set, in-memory otherwise.
type stores struct {
	condominiums directoryservice.CondominiumStore
	owners       directoryservice.OwnerStore
	meetings     meetingservice.MeetingStore
	agendas      meetingservice.AgendaStore
	presences    attendanceservice.PresenceStore
	votes        votingservice.VoteStore
	auditStore   audit.Store
}

func buildStores(cfg config.Server) (*stores, func(), error) {
	s := &stores{
		condominiums: condominiumstore.NewInMemory(),
		owners:       ownerstore.NewInMemory(),
		meetings:     meetingstore.NewInMemory(),
		agendas:      agendastore.NewInMemory(),
		presences:    attendancestore.NewInMemory(),
		votes:        votestore.NewInMemory(),
		auditStore:   auditmemory.NewInMemoryStore(),
	}
	cleanup := func() {}

	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Ping(); err != nil {
			return nil, nil, err
		}
		s.condominiums = condominiumstore.NewPostgres(db)
		s.owners = ownerstore.NewPostgres(db)
		s.meetings = meetingstore.NewPostgres(db)
		s.agendas = agendastore.NewPostgres(db)
		s.presences = attendancestore.NewPostgres(db)
		s.votes = votestore.NewPostgres(db)
		s.auditStore = auditpostgres.New(db)
		cleanup = func() { _ = db.Close() }
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		s.presences = attendancestore.NewRedis(client)
		s.votes = votestore.NewRedis(client)
		prev := cleanup
		cleanup = func() {
			_ = client.Close()
			prev()
		}
	}

	return s, cleanup, nil
}

// voteKey derives the 32-byte codec key from configuration. Without an
// explicit key a process-stable development key is derived from the JWT
// secret; restarting with a different secret makes old ballots unreadable.
func voteKey(cfg config.Server) ([]byte, error) {
	if cfg.VoteEncryptionKey != "" {
		key, err := hex.DecodeString(cfg.VoteEncryptionKey)
		if err != nil {
			return nil, err
		}
		return key, nil
	}
	derived := sha256.Sum256([]byte("agorax-vote-key:" + cfg.JWTSigningKey))
	return derived[:], nil
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	st, cleanup, err := buildStores(cfg)
	if err != nil {
		log.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	publisherOpts := []auditpublisher.Option{
		auditpublisher.WithLogger(log),
		auditpublisher.WithAsyncBuffer(256),
	}
	var kafkaSink *auditkafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err = auditkafka.New(cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			log.Error("failed to initialize kafka audit sink", "error", err)
			os.Exit(1)
		}
		publisherOpts = append(publisherOpts, auditpublisher.WithSink(kafkaSink))
	}
	auditPublisher := auditpublisher.NewPublisher(st.auditStore, publisherOpts...)

	key, err := voteKey(cfg)
	if err != nil {
		log.Error("invalid vote encryption key", "error", err)
		os.Exit(1)
	}
	voteCodec, err := codec.NewAESGCM(key)
	if err != nil {
		log.Error("failed to initialize vote codec", "error", err)
		os.Exit(1)
	}

	directorySvc := directoryservice.New(st.condominiums, st.owners,
		directoryservice.WithLogger(log))
	meetingSvc := meetingservice.New(st.meetings, st.agendas, st.condominiums, st.presences,
		quorum.New(cfg.QuorumMinimum),
		meetingservice.WithLogger(log),
		meetingservice.WithAuditPublisher(auditPublisher),
		meetingservice.WithMetrics(meetingmetrics.New()))
	attendanceSvc := attendanceservice.New(st.presences, st.meetings, st.owners, st.votes,
		attendanceservice.WithLogger(log),
		attendanceservice.WithAuditPublisher(auditPublisher),
		attendanceservice.WithLateRegistration(cfg.AllowLateRegistration))
	votingSvc := votingservice.New(st.votes, st.agendas, st.meetings, st.owners, st.presences, voteCodec,
		votingservice.WithLogger(log),
		votingservice.WithAuditPublisher(auditPublisher),
		votingservice.WithMetrics(votingmetrics.New()))

	verifier := identity.NewVerifier(cfg.JWTSigningKey)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestMetadata)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(api chi.Router) {
		api.Use(middleware.RequireAuth(verifier, log))
		directoryhandler.New(directorySvc, log).Register(api)
		meetinghandler.New(meetingSvc, log).Register(api)
		attendancehandler.New(attendanceSvc, log).Register(api)
		votinghandler.New(votingSvc, log).Register(api)
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting agorax server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		// Drain buffered audit events, then flush the broker producer.
		auditPublisher.Close()
		if kafkaSink != nil {
			return kafkaSink.Close(shutdownCtx)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
