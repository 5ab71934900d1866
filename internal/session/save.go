package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path"

	"github.com/humanitec/azvm-wizard/internal/provision"
)

func Save() error {
	dirname, err := Directory()
	if err != nil {
		return err
	}

	err = os.MkdirAll(dirname, 0700)
	if err != nil {
		return fmt.Errorf("failed to create state file directory: %w", err)
	}

	stateFile, err := json.Marshal(State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path.Join(dirname, stateFileName), stateFile, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// Checkpoint records run as the current run and saves the state.
func Checkpoint(run *provision.Run) error {
	State.Provisioning = run
	return Save()
}
