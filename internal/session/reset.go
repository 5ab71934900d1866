package session

import (
	"fmt"
	"os"
	"path"
)

func Reset() error {
	dirname, err := Directory()
	if err != nil {
		return err
	}

	State = Session{}
	if err = os.RemoveAll(path.Join(dirname, stateFileName)); err != nil {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}
