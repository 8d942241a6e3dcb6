package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"safeloan/internal/loan"
	"safeloan/internal/simulation"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Engine              simulation.Settings
	DataPath            string
	LogDir              string
	CacheDir            string
	LedgerDir           string
	ReportDir           string
	EnableMermaidCharts bool
}

var validate = validator.New()

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Engine parameters
	engine, err := engineFromEnv(simulation.DefaultSettings())
	if err != nil {
		return nil, err
	}

	// 4. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	cfg := &AppConfig{
		Engine:              engine,
		DataPath:            dataPath,
		LogDir:              filepath.Join(dataPath, "logs"),
		CacheDir:            filepath.Join(dataPath, "cache"),
		LedgerDir:           filepath.Join(dataPath, "cache", "ledger"),
		ReportDir:           filepath.Join(dataPath, "reports"),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", true),
	}

	for _, dir := range []string{cfg.LogDir, cfg.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create data directory")
		}
	}

	return cfg, nil
}

// engineFromEnv overlays engine environment variables on base and validates
// the result.
func engineFromEnv(base simulation.Settings) (simulation.Settings, error) {
	s := base

	var err error
	if s.LookbackWindow, err = getEnvInt("LOOKBACK_WINDOW", s.LookbackWindow); err != nil {
		return s, err
	}
	if s.TargetDTI, err = getEnvFloat("TARGET_DTI", s.TargetDTI); err != nil {
		return s, err
	}
	if s.AnnualInterestRate, err = getEnvFloat("ANNUAL_INTEREST_RATE", s.AnnualInterestRate); err != nil {
		return s, err
	}
	if s.TenureCapMultiplier, err = getEnvFloat("TENURE_CAP_MULTIPLIER", s.TenureCapMultiplier); err != nil {
		return s, err
	}
	if s.MinimumTokenInstallment, err = getEnvFloat("MINIMUM_TOKEN_INSTALLMENT", s.MinimumTokenInstallment); err != nil {
		return s, err
	}

	if err := Validate(s); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks a struct against its validate tags. Violations are reported
// as a single ErrInvalidInput naming every offending field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s (got %v)", fe.Namespace(), rule, fe.Value()))
	}
	return loan.Invalidf("%s", strings.Join(msgs, "; "))
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback, loan.Invalidf("%s must be an integer, got %q", key, value)
	}
	return i, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, loan.Invalidf("%s must be a number, got %q", key, value)
	}
	return f, nil
}
