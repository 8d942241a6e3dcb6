package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"safeloan/internal/simulation"

	"github.com/rs/zerolog/log"
)

// Store provides thread-safe, month-ordered storage of simulation snapshots.
type Store struct {
	mu   sync.RWMutex
	runs map[string][]simulation.Snapshot // Partitioned by run ID
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		runs: make(map[string][]simulation.Snapshot),
	}
}

// Append adds snapshots to a run, keeping month order. A month already
// recorded for the run is not overwritten.
func (s *Store) Append(runID string, snapshots []simulation.Snapshot) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.runs[runID]

	existing := make(map[int]bool, len(run))
	for _, snap := range run {
		existing[snap.Month] = true
	}

	added := 0
	for _, snap := range snapshots {
		if existing[snap.Month] {
			continue
		}
		existing[snap.Month] = true
		run = append(run, snap)
		added++
	}

	if added == 0 {
		return 0
	}

	sort.Slice(run, func(i, j int) bool { return run[i].Month < run[j].Month })
	s.runs[runID] = run
	return added
}

// Snapshots returns a copy of a run's snapshots.
func (s *Store) Snapshots(runID string) []simulation.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil
	}
	out := make([]simulation.Snapshot, len(run))
	copy(out, run)
	return out
}

// Latest returns the most recent snapshot of a run.
func (s *Store) Latest(runID string) (simulation.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := s.runs[runID]
	if len(run) == 0 {
		return simulation.Snapshot{}, false
	}
	return run[len(run)-1], true
}

// Count returns the number of months recorded for a run.
func (s *Store) Count(runID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs[runID])
}

// Runs lists the known run IDs in lexical order.
func (s *Store) Runs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func runPath(dir, runID string) string {
	return filepath.Join(dir, fmt.Sprintf("%s.jsonl", runID))
}

// Load reads a run's snapshots from its JSONL file in dir.
func (s *Store) Load(dir string, runID string) error {
	path := runPath(dir, runID)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Nothing persisted yet
		}
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer file.Close()

	var snapshots []simulation.Snapshot
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var snap simulation.Snapshot
		if err := json.Unmarshal(scanner.Bytes(), &snap); err != nil {
			log.Warn().Err(err).Str("run", runID).Msg("Skipping invalid JSON line in ledger")
			continue
		}
		snapshots = append(snapshots, snap)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading ledger: %w", err)
	}

	log.Info().Str("run", runID).Int("count", len(snapshots)).Msg("Loaded snapshots from ledger")
	s.Append(runID, snapshots)
	return nil
}

// Save persists a run's snapshots to a JSONL file in dir.
func (s *Store) Save(dir string, runID string) error {
	s.mu.RLock()
	run, ok := s.runs[runID]
	s.mu.RUnlock()

	if !ok || len(run) == 0 {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	path := runPath(dir, runID)
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}

	writer := bufio.NewWriter(file)
	encoder := json.NewEncoder(writer)

	for _, snap := range run {
		if err := encoder.Encode(snap); err != nil {
			file.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to encode snapshot: %w", err)
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

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename ledger file: %w", err)
	}

	log.Info().Str("run", runID).Int("count", len(run)).Msg("Snapshots saved to ledger")
	return nil
}
