package provision

import (
	"errors"
	"fmt"
	"time"

	"github.com/humanitec/azvm-wizard/internal/cloud"
)

var (
	ErrNotSucceeded          = errors.New("provisioning state is not Succeeded")
	ErrCertificateFailed     = errors.New("certificate operation failed")
	ErrCertificateIncomplete = errors.New("certificate has no secret id")
)

// DirectoryLookupError stops a run before anything is created.
type DirectoryLookupError struct {
	ApplicationID string
	Err           error
}

func (e *DirectoryLookupError) Error() string {
	return fmt.Sprintf("failed to look up the object id of application %s, %v", e.ApplicationID, e.Err)
}

func (e *DirectoryLookupError) Unwrap() error {
	return e.Err
}

// ProvisioningError is a failed cloud call, or a resource that did not reach
// the Succeeded state. Transient failures may succeed on a resumed run.
type ProvisioningError struct {
	Step      Step
	Resource  string
	Err       error
	Transient bool
}

func newProvisioningError(step Step, resource string, err error) *ProvisioningError {
	return &ProvisioningError{
		Step:      step,
		Resource:  resource,
		Err:       err,
		Transient: cloud.IsTransient(err),
	}
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("%s step failed on %s: %v", e.Step, e.Resource, e.Err)
}

func (e *ProvisioningError) Unwrap() error {
	return e.Err
}

// PollTimeoutError is returned when a certificate operation is still pending
// once the poller's bound is reached.
type PollTimeoutError struct {
	Certificate string
	LastStatus  string
	// Bound is either "timeout" or "attempts".
	Bound    string
	Timeout  time.Duration
	Attempts int
}

func (e *PollTimeoutError) Error() string {
	limit := e.Timeout.String()
	if e.Bound == "attempts" {
		limit = fmt.Sprintf("%d attempts", e.Attempts)
	}
	return fmt.Sprintf("certificate %s still %q after %s", e.Certificate, e.LastStatus, limit)
}
