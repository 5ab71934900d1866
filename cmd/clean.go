package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humanitec/azvm-wizard/internal/cloud"
	"github.com/humanitec/azvm-wizard/internal/message"
	"github.com/humanitec/azvm-wizard/internal/provision"
	"github.com/humanitec/azvm-wizard/internal/session"
)

var cleanYes bool

var errNotCleaned = errors.New("resources were not deleted")

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean resources created by the wizard",
	Long:  `It deletes the Resource Group of the run stored in the state, together with every resource in it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		err := session.Load(true)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		run := session.State.Provisioning
		if run == nil {
			message.Info("No run in progress, nothing to clean")
			return nil
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		provider, err := initializeAzureProvider(cfg)
		if err != nil {
			return err
		}

		err = Clean(ctx, provider, run, cleanYes)
		if errors.Is(err, errNotCleaned) {
			message.Info("Nothing was deleted")
			return nil
		}
		return err
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanYes, "yes", false, "delete without asking for confirmation")
	rootCmd.AddCommand(cleanCmd)
}

// Clean deletes the Resource Group of run and forgets the run. It returns
// errNotCleaned if the user declines.
func Clean(ctx context.Context, provider cloud.Provider, run *provision.Run, force bool) error {
	if !force {
		answer, err := message.BoolSelect(fmt.Sprintf("Do you want to delete Resource Group %s and everything in it?", run.Names.ResourceGroup))
		if err != nil {
			return fmt.Errorf("failed to get user input: %w", err)
		}
		if !answer {
			return errNotCleaned
		}
	}

	message.Info("Deleting Resource Group %s", run.Names.ResourceGroup)
	if err := provider.DeleteResourceGroup(ctx, run.Names.ResourceGroup); err != nil {
		if !cloud.IsNotFound(err) {
			return fmt.Errorf("failed to clean resources: %w", err)
		}
		message.Info("Resource Group %s does not exist anymore", run.Names.ResourceGroup)
	}

	removeRunKeys(run)
	if err := session.Reset(); err != nil {
		return fmt.Errorf("failed to reset session: %w", err)
	}
	message.Success("All resources are removed")
	return nil
}
