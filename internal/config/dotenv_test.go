package config

import (
	"os"
	"path/filepath"
	"testing"

	"safeloan/internal/simulation"

	"github.com/joho/godotenv"
)

func TestDotenvQuotedEngineValues(t *testing.T) {
	content := "TARGET_DTI='0.30'\nTENURE_CAP_MULTIPLIER=\"1.5\"\n# comment\nMINIMUM_TOKEN_INSTALLMENT=250\n"
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	s, err := engineFromEnv(simulation.DefaultSettings())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if s.TargetDTI != 0.30 {
		t.Errorf("Expected DTI 0.30, got %v", s.TargetDTI)
	}
	if s.TenureCapMultiplier != 1.5 {
		t.Errorf("Expected cap multiplier 1.5, got %v", s.TenureCapMultiplier)
	}
	if s.MinimumTokenInstallment != 250 {
		t.Errorf("Expected token installment 250, got %v", s.MinimumTokenInstallment)
	}
}
