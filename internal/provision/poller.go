package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azcertificates"
	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/humanitec/azvm-wizard/internal/cloud"
	"github.com/humanitec/azvm-wizard/internal/config"
	"github.com/humanitec/azvm-wizard/internal/message"
	"github.com/humanitec/azvm-wizard/internal/utils"
)

const certificateStatusCompleted = "completed"

var errCertificatePending = errors.New("certificate operation pending")

// PollOptions bound the certificate poller. At least one of Timeout and
// MaxAttempts must be set.
type PollOptions struct {
	Interval    time.Duration
	MaxInterval time.Duration
	Backoff     bool
	Timeout     time.Duration
	MaxAttempts int
	Clock       clock.Clock
}

func PollOptionsFromSettings(timing config.TimingSettings) PollOptions {
	return PollOptions{
		Interval:    timing.PollInterval,
		MaxInterval: timing.PollMaxInterval,
		Backoff:     timing.PollBackoff,
		Timeout:     timing.PollTimeout,
		MaxAttempts: timing.PollMaxAttempts,
		Clock:       clock.WallClock,
	}
}

// WaitForCertificate queries the pending operation of certificate name until
// it reports completed, then fetches the certificate.
func WaitForCertificate(ctx context.Context, provider cloud.Provider, vaultURI, name string, opts PollOptions) (azcertificates.Certificate, error) {
	var lastStatus string
	args := retry.CallArgs{
		Func: func() error {
			op, err := provider.GetCertificateOperation(ctx, vaultURI, name)
			if err != nil {
				return err
			}
			if op.Error != nil {
				return fmt.Errorf("%w: %s: %w", ErrCertificateFailed, op.Error.Code, op.Error)
			}
			lastStatus = utils.DeRefOr(op.Status, "")
			if lastStatus == certificateStatusCompleted {
				return nil
			}
			return errCertificatePending
		},
		IsFatalError: func(err error) bool {
			return !errors.Is(err, errCertificatePending)
		},
		NotifyFunc: func(err error, attempt int) {
			message.Debug("attempt %d: certificate %s is %q", attempt, name, lastStatus)
		},
		Attempts:    -1,
		Delay:       opts.Interval,
		MaxDelay:    opts.MaxInterval,
		MaxDuration: opts.Timeout,
		Clock:       opts.Clock,
		Stop:        ctx.Done(),
	}
	if opts.MaxAttempts > 0 {
		args.Attempts = opts.MaxAttempts
	}
	if opts.Backoff {
		args.BackoffFunc = retry.DoubleDelay
	}
	if args.Clock == nil {
		args.Clock = clock.WallClock
	}

	err := retry.Call(args)
	switch {
	case err == nil:
	case retry.IsAttemptsExceeded(err):
		return azcertificates.Certificate{}, &PollTimeoutError{Certificate: name, LastStatus: lastStatus, Bound: "attempts", Attempts: opts.MaxAttempts}
	case retry.IsDurationExceeded(err):
		return azcertificates.Certificate{}, &PollTimeoutError{Certificate: name, LastStatus: lastStatus, Bound: "timeout", Timeout: opts.Timeout}
	case retry.IsRetryStopped(err):
		return azcertificates.Certificate{}, ctx.Err()
	default:
		return azcertificates.Certificate{}, err
	}

	return provider.GetCertificate(ctx, vaultURI, name)
}
