package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/humanitec/azvm-wizard/internal/cloud"
	"github.com/humanitec/azvm-wizard/internal/config"
	"github.com/humanitec/azvm-wizard/internal/keys"
	"github.com/humanitec/azvm-wizard/internal/message"
	"github.com/humanitec/azvm-wizard/internal/names"
	"github.com/humanitec/azvm-wizard/internal/provision"
	"github.com/humanitec/azvm-wizard/internal/session"
)

var provisionFlags struct {
	location    string
	vmSize      string
	keep        bool
	vaultRBAC   bool
	yes         bool
	settleDelay time.Duration
	pollTimeout time.Duration
}

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision a virtual machine that receives a key vault certificate",
	Long: `It creates a Resource Group with a Key Vault, a self-signed certificate, a network and a Linux
Virtual Machine with the certificate installed, prints how to connect to it and then deletes the
Resource Group. An interrupted run is resumed from the last completed step.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		applyProvisionFlags(cmd, &cfg.Settings)
		if err := cfg.Validate(); err != nil {
			return err
		}

		provider, err := initializeAzureProvider(cfg)
		if err != nil {
			return err
		}

		run, err := currentRun(ctx, provider, provisionFlags.yes)
		if err != nil {
			return err
		}

		access, err := vmAccess(cfg, run)
		if err != nil {
			return err
		}

		sequencer := provision.NewSequencer(cfg, provider, provision.Options{
			Checkpoint: session.Checkpoint,
			Keep:       provisionFlags.keep,
			Access:     access,
		})
		if err := sequencer.Execute(ctx, run); err != nil {
			var provisioningErr *provision.ProvisioningError
			switch {
			case errors.As(err, &provisioningErr) && provisioningErr.Transient:
				message.Warning("The %s step failed with a temporary error, run 'azvm-wizard provision' again to resume", provisioningErr.Step)
			case run.Completed >= provision.StepResourceGroup:
				message.Info("Run 'azvm-wizard provision' to resume or 'azvm-wizard clean' to delete Resource Group %s", run.Names.ResourceGroup)
			}
			return fmt.Errorf("failed to provision: %w", err)
		}

		if run.Finished() {
			removeRunKeys(run)
			if err := session.Reset(); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}
			message.Success("All resources are removed")
		}
		return nil
	},
}

// currentRun returns the run stored in the session or a new one. A stored
// run the user does not resume has to be cleaned before a new run starts,
// otherwise its Resource Group would no longer be recorded anywhere.
func currentRun(ctx context.Context, provider cloud.Provider, force bool) (*provision.Run, error) {
	err := session.Load(force)
	var unfinished *session.UnfinishedRunError
	if errors.As(err, &unfinished) {
		if err := Clean(ctx, provider, unfinished.Run, false); err != nil {
			if errors.Is(err, errNotCleaned) {
				return nil, fmt.Errorf("%w, resume it or run 'azvm-wizard clean' first", unfinished)
			}
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	run := session.State.Provisioning
	if run != nil {
		message.Info("Resuming run %s after the %s step", run.ID, run.Completed)
		return run, nil
	}
	run, err = provision.NewRun(names.NewGenerator())
	if err != nil {
		return nil, err
	}
	message.Info("Starting run %s in Resource Group %s", run.ID, run.Names.ResourceGroup)
	return run, nil
}

func applyProvisionFlags(cmd *cobra.Command, settings *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("location") {
		settings.Location = provisionFlags.location
	}
	if flags.Changed("vm-size") {
		settings.VMSize = provisionFlags.vmSize
	}
	if flags.Changed("vault-rbac") {
		settings.Vault.RBAC = provisionFlags.vaultRBAC
	}
	if flags.Changed("settle-delay") {
		settings.Timing.SettleDelay = provisionFlags.settleDelay
	}
	if flags.Changed("poll-timeout") {
		settings.Timing.PollTimeout = provisionFlags.pollTimeout
	}
}

// vmAccess returns the login of the admin user. Without a password a key
// pair is generated once per run and stored next to the state file. Once
// the Virtual Machine exists its key pair is never replaced.
func vmAccess(cfg config.Config, run *provision.Run) (provision.Access, error) {
	access := provision.Access{Username: cfg.AdminUsername}
	if cfg.AdminPassword != "" {
		access.Password = cfg.AdminPassword
		return access, nil
	}

	if run.PrivateKeyPath != "" {
		public, err := os.ReadFile(run.PrivateKeyPath + ".pub")
		if err == nil {
			access.SSHPublicKey = strings.TrimSpace(string(public))
			access.PrivateKeyPath = run.PrivateKeyPath
			return access, nil
		}
		if run.Completed >= provision.StepVirtualMachine {
			message.Warning("Key pair %s of run %s not found, Virtual Machine %s keeps the public key it was created with",
				run.PrivateKeyPath, run.ID, run.Names.VirtualMachine)
			access.PrivateKeyPath = run.PrivateKeyPath
			return access, nil
		}
		message.Warning("Key pair of run %s not found, generating a new one", run.ID)
	}

	keyPair, err := keys.Generate()
	if err != nil {
		return provision.Access{}, fmt.Errorf("failed to generate key pair: %w", err)
	}
	dirname, err := runKeyDirectory(run)
	if err != nil {
		return provision.Access{}, err
	}
	privateKeyPath, err := keyPair.Write(dirname, "id_rsa")
	if err != nil {
		return provision.Access{}, err
	}
	message.Debug("SSH key pair written to %s", privateKeyPath)

	run.PrivateKeyPath = privateKeyPath
	access.SSHPublicKey = strings.TrimSpace(string(keyPair.Public))
	access.PrivateKeyPath = privateKeyPath
	return access, nil
}

func init() {
	provisionCmd.Flags().StringVar(&provisionFlags.location, "location", "", "Azure region of every resource")
	provisionCmd.Flags().StringVar(&provisionFlags.vmSize, "vm-size", "", "size of the virtual machine")
	provisionCmd.Flags().BoolVar(&provisionFlags.keep, "keep", false, "keep the resources instead of deleting them at the end")
	provisionCmd.Flags().BoolVar(&provisionFlags.vaultRBAC, "vault-rbac", false, "authorize vault access with Azure RBAC instead of an access policy")
	provisionCmd.Flags().BoolVar(&provisionFlags.yes, "yes", false, "resume the previous run without asking")
	provisionCmd.Flags().DurationVar(&provisionFlags.settleDelay, "settle-delay", 0, "longest wait for a new vault to resolve")
	provisionCmd.Flags().DurationVar(&provisionFlags.pollTimeout, "poll-timeout", 0, "longest wait for the certificate to be issued")
	rootCmd.AddCommand(provisionCmd)
}
