package config

import (
	"os"
	"strconv"
	"time"
)

// Config carries every externally provided setting. It is built once in main
// and passed into constructors; nothing in this repo reads the environment
// after startup.
type Config struct {
	ListenAddr string
	LogLevel   string

	// Ledger
	RPCURL              string
	ChainID             int64
	PrivateKeyHex       string
	ContractAddress     string
	GasLimitMargin      uint64
	ConfirmTimeout      time.Duration
	ConfirmPollInterval time.Duration
	ExplorerBaseURL     string

	// Storage gateway
	PinEndpoint    string
	PinAPIKey      string
	PinSecret      string
	GatewayBaseURL string

	// Persistence
	DatabaseDSN string

	// Rate limiting
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	RateLimitFailClosed bool

	// Policy
	PolicyBundlePath string
	PolicyBundleID   string

	// Rendering
	ArtifactDir string
}

func FromEnv() Config {
	return Config{
		ListenAddr: getString("LISTEN_ADDR", ":8080"),
		LogLevel:   getString("LOG_LEVEL", "info"),

		RPCURL:              getString("RPC_URL", "http://127.0.0.1:7545"),
		ChainID:             getInt64("CHAIN_ID", 1337),
		PrivateKeyHex:       os.Getenv("PRIVATE_KEY"),
		ContractAddress:     os.Getenv("CONTRACT_ADDRESS"),
		GasLimitMargin:      uint64(getInt64("GAS_LIMIT_MARGIN", 50000)),
		ConfirmTimeout:      getDuration("CONFIRM_TIMEOUT", 300*time.Second),
		ConfirmPollInterval: getDuration("CONFIRM_POLL_INTERVAL", time.Second),
		ExplorerBaseURL:     getString("EXPLORER_BASE_URL", "https://etherscan.io"),

		PinEndpoint:    getString("PIN_ENDPOINT", "https://api.pinata.cloud/pinning/pinFileToIPFS"),
		PinAPIKey:      os.Getenv("PINATA_API_KEY"),
		PinSecret:      os.Getenv("PINATA_SECRET"),
		GatewayBaseURL: getString("GATEWAY_BASE_URL", "https://gateway.pinata.cloud/ipfs"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             int(getInt64("REDIS_DB", 0)),
		RateLimitRequests:   int(getInt64("RATE_LIMIT_REQUESTS", 60)),
		RateLimitWindow:     getDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitFailClosed: getBool("RATE_LIMIT_FAIL_CLOSED", false),

		PolicyBundlePath: os.Getenv("POLICY_BUNDLE_PATH"),
		PolicyBundleID:   getString("POLICY_BUNDLE_ID", "default"),

		ArtifactDir: getString("ARTIFACT_DIR", os.TempDir()),
	}
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
