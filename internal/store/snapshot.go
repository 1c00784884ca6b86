package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"crypto-paper-trader/internal/types"
)

// SaveAccount writes the account state to path as indented JSON. The
// serialized form round-trips cash, positions and the ordered trade
// history losslessly.
func SaveAccount(path string, st types.AccountState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal account state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write account snapshot: %w", err)
	}
	return nil
}

// LoadAccount reads an account snapshot from path. Returns (nil, nil)
// when no snapshot exists yet.
func LoadAccount(path string) (*types.AccountState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read account snapshot: %w", err)
	}

	var st types.AccountState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account snapshot: %w", err)
	}
	return &st, nil
}
