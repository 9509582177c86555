package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"studyfocus/internal/modules/timer/domain"
	timerout "studyfocus/internal/modules/timer/port/out"
	apperrors "studyfocus/internal/platform/errors"
)

// FileActiveSessionStore keeps the running session on disk so a crashed process can hand it off
// as interrupted on the next start.
type FileActiveSessionStore struct {
	path string
}

func NewFileActiveSessionStore(dataDir string) timerout.ActiveSessionStore {
	return &FileActiveSessionStore{path: filepath.Join(dataDir, "active-session.json")}
}

func (s *FileActiveSessionStore) SaveActive(_ context.Context, state domain.SessionState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create active session dir: %w", err)
	}
	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write active session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace active session: %w", err)
	}
	return nil
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context) (domain.SessionState, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SessionState{}, apperrors.ErrNoActiveSession
		}
		return domain.SessionState{}, fmt.Errorf("read active session: %w", err)
	}
	state := domain.SessionState{}
	if err := json.Unmarshal(payload, &state); err != nil {
		return domain.SessionState{}, fmt.Errorf("decode active session: %w", err)
	}
	if state.SessionID == "" || !state.Active() {
		return domain.SessionState{}, apperrors.ErrNoActiveSession
	}
	return state, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
