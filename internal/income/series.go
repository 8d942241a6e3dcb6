package income

import (
	"bufio"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"safeloan/internal/loan"

	"github.com/rs/zerolog/log"
)

// Observation is one month of recorded income.
type Observation struct {
	Month  int     `json:"month"`
	Income float64 `json:"income"`
}

// Series numbers incomes from month 1.
func Series(incomes []float64) []Observation {
	obs := make([]Observation, len(incomes))
	for i, v := range incomes {
		obs[i] = Observation{Month: i + 1, Income: v}
	}
	return obs
}

// Load reads a JSONL income file and returns incomes ordered by month.
// Malformed lines are skipped; duplicate months and negative incomes are errors.
func Load(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open income file: %w", err)
	}
	defer file.Close()

	var obs []Observation
	seen := make(map[int]bool)
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var o Observation
		if err := json.Unmarshal(scanner.Bytes(), &o); err != nil {
			log.Warn().Err(err).Str("path", path).Int("line", line).Msg("Skipping invalid JSON line in income file")
			continue
		}
		if o.Income < 0 || math.IsNaN(o.Income) {
			return nil, loan.Invalidf("line %d: income must be non-negative, got %v", line, o.Income)
		}
		if seen[o.Month] {
			return nil, loan.Invalidf("line %d: duplicate month %d", line, o.Month)
		}
		seen[o.Month] = true
		obs = append(obs, o)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading income file: %w", err)
	}

	sort.Slice(obs, func(i, j int) bool { return obs[i].Month < obs[j].Month })

	incomes := make([]float64, len(obs))
	for i, o := range obs {
		incomes[i] = o.Income
	}

	log.Info().Str("path", path).Int("months", len(incomes)).Msg("Loaded income history")
	return incomes, nil
}

// Save writes incomes as JSONL, replacing path atomically.
func Save(path string, incomes []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create income directory: %w", err)
	}

	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp income file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)
	for _, o := range Series(incomes) {
		if err := encoder.Encode(o); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode income: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename income file: %w", err)
	}

	log.Info().Str("path", path).Int("months", len(incomes)).Msg("Income history saved")
	return nil
}
