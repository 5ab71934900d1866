package session

import (
	"fmt"
	"os"
	"path"

	"github.com/humanitec/azvm-wizard/internal/provision"
)

const (
	stateFileName      = ".azvm-wizard-state"
	stateFileDirectory = ".azvm-wizard"
)

var State = Session{}

type Session struct {
	// Provisioning is the current run, nil once it has been torn down.
	Provisioning *provision.Run `json:"provisioning,omitempty"`
}

// Directory returns the directory holding the state file and the key pairs
// of the runs.
func Directory() (string, error) {
	dirname, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return path.Join(dirname, stateFileDirectory), nil
}
