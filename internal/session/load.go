package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/humanitec/azvm-wizard/internal/message"
	"github.com/humanitec/azvm-wizard/internal/provision"
)

// UnfinishedRunError is returned by Load when the user does not resume a
// run that already created its Resource Group. The run stays in the state
// file so that it can still be cleaned.
type UnfinishedRunError struct {
	Run *provision.Run
}

func (e *UnfinishedRunError) Error() string {
	return fmt.Sprintf("run %s was not resumed and still owns Resource Group %s", e.Run.ID, e.Run.Names.ResourceGroup)
}

// Load reads the state of the previous session. Unless force is set, the
// user is asked whether an unfinished run should be resumed. Declining a
// run that has not created anything yet starts from an empty state,
// declining any other run returns an *UnfinishedRunError.
func Load(force bool) error {
	dirname, err := Directory()
	if err != nil {
		return err
	}

	stateFile, err := os.ReadFile(path.Join(dirname, stateFileName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read state file: %w", err)
		}
		message.Debug("State file not found, creating new state")
		return nil
	}

	var loaded Session
	if err := json.Unmarshal(stateFile, &loaded); err != nil {
		return fmt.Errorf("failed to unmarshal state file: %w", err)
	}
	run := loaded.Provisioning
	if run == nil || run.Finished() {
		return nil
	}

	answer := true
	if !force {
		answer, err = message.BoolSelect(fmt.Sprintf("Do you want to resume run %s (Resource Group %s, last completed step: %s)?",
			run.ID, run.Names.ResourceGroup, run.Completed))
		if err != nil {
			return fmt.Errorf("failed to get user input: %w", err)
		}
	}
	switch {
	case answer:
		State = loaded
	case run.Completed >= provision.StepResourceGroup:
		return &UnfinishedRunError{Run: run}
	default:
		message.Debug("Discarding run %s, it did not create any resources", run.ID)
	}
	return nil
}
