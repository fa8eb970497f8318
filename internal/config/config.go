package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Solver   SolverConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// SolverConfig holds per-stage solve limits and objective tuning.
type SolverConfig struct {
	StageTimeLimit      time.Duration
	NodeLimit           int
	RepairIterations    int
	VolatilityThreshold float64
	MaxParallelUnits    int
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "roster_engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Solver configuration
	stageLimit, err := time.ParseDuration(getEnv("SOLVER_STAGE_TIME_LIMIT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOLVER_STAGE_TIME_LIMIT: %w", err)
	}
	nodeLimit, err := strconv.Atoi(getEnv("SOLVER_NODE_LIMIT", "2000000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOLVER_NODE_LIMIT: %w", err)
	}
	repairIterations, err := strconv.Atoi(getEnv("SOLVER_REPAIR_ITERATIONS", "20000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOLVER_REPAIR_ITERATIONS: %w", err)
	}
	volatilityThreshold, err := strconv.ParseFloat(getEnv("SOLVER_VOLATILITY_THRESHOLD", "1.5"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SOLVER_VOLATILITY_THRESHOLD: %w", err)
	}
	maxParallelUnits, err := strconv.Atoi(getEnv("SOLVER_MAX_PARALLEL_UNITS", "4"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOLVER_MAX_PARALLEL_UNITS: %w", err)
	}

	config.Solver = SolverConfig{
		StageTimeLimit:      stageLimit,
		NodeLimit:           nodeLimit,
		RepairIterations:    repairIterations,
		VolatilityThreshold: volatilityThreshold,
		MaxParallelUnits:    maxParallelUnits,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Solver.StageTimeLimit <= 0 {
		return fmt.Errorf("SOLVER_STAGE_TIME_LIMIT must be positive")
	}
	if c.Solver.NodeLimit <= 0 {
		return fmt.Errorf("SOLVER_NODE_LIMIT must be positive")
	}
	if c.Solver.MaxParallelUnits <= 0 {
		return fmt.Errorf("SOLVER_MAX_PARALLEL_UNITS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
