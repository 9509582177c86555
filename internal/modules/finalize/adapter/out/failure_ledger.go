package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"studyfocus/internal/modules/finalize/domain"
	apperrors "studyfocus/internal/platform/errors"
)

// FileFailureLedger keeps failed finalizations in a JSON file so they can be retried from a
// later process.
type FileFailureLedger struct {
	path string
	mu   sync.Mutex
}

func NewFileFailureLedger(dataDir string) *FileFailureLedger {
	return &FileFailureLedger{path: filepath.Join(dataDir, "finalize-failures.json")}
}

func (l *FileFailureLedger) Record(_ context.Context, failure domain.Failure) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.load()
	if err != nil {
		return err
	}
	entries[failure.Session.SessionID] = failure
	return l.save(entries)
}

func (l *FileFailureLedger) Get(_ context.Context, sessionID string) (domain.Failure, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.load()
	if err != nil {
		return domain.Failure{}, err
	}
	failure, ok := entries[sessionID]
	if !ok {
		return domain.Failure{}, fmt.Errorf("%w: no finalize failure for session %s", apperrors.ErrNotFound, sessionID)
	}
	return failure, nil
}

func (l *FileFailureLedger) List(_ context.Context) ([]domain.Failure, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Failure, 0, len(entries))
	for _, failure := range entries {
		out = append(out, failure)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FailedAt.Equal(out[j].FailedAt) {
			return out[i].Session.SessionID < out[j].Session.SessionID
		}
		return out[i].FailedAt.Before(out[j].FailedAt)
	})
	return out, nil
}

func (l *FileFailureLedger) Remove(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.load()
	if err != nil {
		return err
	}
	if _, ok := entries[sessionID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(entries, sessionID)
	return l.save(entries)
}

func (l *FileFailureLedger) load() (map[string]domain.Failure, error) {
	entries := map[string]domain.Failure{}
	payload, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return entries, nil
		}
		return nil, fmt.Errorf("read finalize failures: %w", err)
	}
	if len(payload) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode finalize failures: %w", err)
	}
	return entries, nil
}

func (l *FileFailureLedger) save(entries map[string]domain.Failure) error {
	if len(entries) == 0 {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear finalize failures: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create finalize failures dir: %w", err)
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal finalize failures: %w", err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write finalize failures: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace finalize failures: %w", err)
	}
	return nil
}
