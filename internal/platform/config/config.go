package config

import (
	"os"
	"strconv"
	"strings"
)

// Config captures process-level configuration so main stays lean. Governance
// parameters (voting period, verification threshold) live here because they
// are process-wide, not per-proposal.
type Config struct {
	Addr          string
	JWTSigningKey string

	// Pool registry defaults. CreationFee is charged to the pool creator and
	// paid to the configured authority; MaxPools caps the registry size.
	CreationFee uint64
	MaxPools    uint64

	// VotingPeriod is the height offset added to the current height whenever
	// a vote is cast, defining the tally's end height.
	VotingPeriod uint64

	// RequiredSignatures is the distinct-signer threshold that flips a
	// verification record; MaxSigners bounds the signer set.
	RequiredSignatures int
	MaxSigners         int

	// Event pipeline sinks. Empty values disable the respective sink.
	PostgresDSN  string
	RedisURL     string
	KafkaBrokers []string
	KafkaTopic   string
}

// FromEnv builds a Config from environment variables, applying the defaults
// the contracts shipped with.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("PATROLFUND_ADDR", ":8080"),
		JWTSigningKey:      envOr("PATROLFUND_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		CreationFee:        envUint("PATROLFUND_CREATION_FEE", 1_000_000),
		MaxPools:           envUint("PATROLFUND_MAX_POOLS", 100),
		VotingPeriod:       envUint("PATROLFUND_VOTING_PERIOD", 144),
		RequiredSignatures: int(envUint("PATROLFUND_REQUIRED_SIGNATURES", 3)),
		MaxSigners:         int(envUint("PATROLFUND_MAX_SIGNERS", 10)),
		PostgresDSN:        os.Getenv("PATROLFUND_POSTGRES_DSN"),
		RedisURL:           os.Getenv("PATROLFUND_REDIS_URL"),
		KafkaTopic:         envOr("PATROLFUND_KAFKA_TOPIC", "patrolfund.events"),
	}
	if brokers := os.Getenv("PATROLFUND_KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
