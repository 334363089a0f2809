package config

import (
	"os"
	"strconv"
	"strings"
)

// Server captures process-level configuration. FromEnv keeps main lean; every
// value has a development default so the server boots with no environment.
type Server struct {
	Addr string

	// PostgresDSN selects the postgres-backed stores when set; otherwise the
	// in-memory stores are used (tests, demos).
	PostgresDSN string

	// RedisAddr selects the redis-backed attendance and vote stores when set.
	RedisAddr string

	// KafkaBrokers enables the streaming audit sink when non-empty.
	KafkaBrokers []string
	AuditTopic   string

	JWTSigningKey string

	// QuorumMinimum is the attendance percentage required before a meeting
	// may open. Compared with >=, so exactly-at-threshold passes.
	QuorumMinimum float64

	// AllowLateRegistration permits presence registration while a meeting is
	// already in progress (owners arriving late).
	AllowLateRegistration bool

	// VoteEncryptionKey is the hex key for the vote payload codec. A dev key
	// is generated when unset; production must override.
	VoteEncryptionKey string
}

// DefaultQuorumMinimum is the reference threshold: 51% of the coefficient
// snapshot must be present before an assembly can open.
const DefaultQuorumMinimum = 51.0

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:                  envOr("AGORAX_ADDR", ":8080"),
		PostgresDSN:           os.Getenv("AGORAX_POSTGRES_DSN"),
		RedisAddr:             os.Getenv("AGORAX_REDIS_ADDR"),
		AuditTopic:            os.Getenv("AGORAX_AUDIT_TOPIC"),
		JWTSigningKey:         envOr("AGORAX_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		QuorumMinimum:         DefaultQuorumMinimum,
		AllowLateRegistration: os.Getenv("AGORAX_FORBID_LATE_REGISTRATION") != "true",
		VoteEncryptionKey:     os.Getenv("AGORAX_VOTE_ENCRYPTION_KEY"),
	}

	if raw := os.Getenv("AGORAX_KAFKA_BROKERS"); raw != "" {
		cfg.KafkaBrokers = strings.Split(raw, ",")
	}
	if raw := os.Getenv("AGORAX_QUORUM_MIN"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
			cfg.QuorumMinimum = parsed
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
