package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"byte_battle/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	DatabaseURL   string
	JWTSecret     string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogLevel string
	LogJSON  bool

	// AI backend (Gemini generateContent)
	AIAPIKey  string
	AIModel   string
	AIBaseURL string

	Battle BattleConfig

	// Rate limits
	APIRateLimit    int
	APIRateWindow   time.Duration
	WSConnectLimit  int
	WSConnectWindow time.Duration
}

// BattleConfig holds round timing and room settings.
type BattleConfig struct {
	RoundDuration     time.Duration
	GenerationTimeout time.Duration
	JudgeTimeout      time.Duration
	ReconnectGrace    time.Duration
	EnforceDeadline   bool
	CodeLength        int
}

// Load reads the configuration from env (and .env if present).
func Load() *Config {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	model := os.Getenv("AI_MODEL")
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &Config{
		AppPort:       port,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     jwtSecret,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       intEnv("REDIS_DB", 0),

		LogLevel: os.Getenv("LOG_LEVEL"),
		LogJSON:  os.Getenv("LOG_JSON") == "true",

		AIAPIKey:  os.Getenv("AI_API_KEY"),
		AIModel:   model,
		AIBaseURL: os.Getenv("AI_BASE_URL"),

		Battle: BattleConfig{
			RoundDuration:     secondsEnv("BATTLE_ROUND_SECONDS", 900),
			GenerationTimeout: secondsEnv("BATTLE_GENERATION_TIMEOUT_SECONDS", 45),
			JudgeTimeout:      secondsEnv("BATTLE_JUDGE_TIMEOUT_SECONDS", 45),
			ReconnectGrace:    secondsEnv("BATTLE_RECONNECT_GRACE_SECONDS", 60),
			EnforceDeadline:   os.Getenv("BATTLE_ENFORCE_DEADLINE") == "true",
			CodeLength:        intEnv("BATTLE_CODE_LENGTH", 4),
		},

		APIRateLimit:    intEnv("API_RATE_LIMIT", 60),
		APIRateWindow:   secondsEnv("API_RATE_WINDOW_SECONDS", 60),
		WSConnectLimit:  intEnv("WS_CONNECT_LIMIT", 30),
		WSConnectWindow: secondsEnv("WS_CONNECT_WINDOW_SECONDS", 60),
	}
}

// intEnv returns a positive int from env, or def.
func intEnv(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logger.Warn("ignoring invalid integer env value", "key", key, "value", v)
		return def
	}
	return n
}

func secondsEnv(key string, def int) time.Duration {
	return time.Duration(intEnv(key, def)) * time.Second
}
