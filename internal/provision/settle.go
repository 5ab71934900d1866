package provision

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/humanitec/azvm-wizard/internal/message"
	"github.com/humanitec/azvm-wizard/internal/utils"
)

// Resolver is satisfied by *net.Resolver.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// WaitForVault probes the DNS name of a new vault every interval until it
// resolves. It gives up silently after delay, which is the longest a fresh
// vault has been observed to need.
func WaitForVault(ctx context.Context, resolver Resolver, vaultURI string, delay, interval time.Duration) error {
	if delay <= 0 {
		return nil
	}
	parsed, err := url.Parse(vaultURI)
	if err != nil || parsed.Hostname() == "" {
		return fmt.Errorf("failed to parse vault URI %q", vaultURI)
	}
	host := parsed.Hostname()

	settleCtx, cancel := context.WithTimeout(ctx, delay)
	defer cancel()

	for {
		if _, err = resolver.LookupHost(settleCtx, host); err == nil {
			message.Debug("vault %s resolves", host)
			return nil
		}
		message.Debug("vault %s does not resolve yet: %v", host, err)

		if err := utils.Sleep(settleCtx, interval); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			message.Debug("vault %s still not resolving after %s, continuing", host, delay)
			return nil
		}
	}
}
