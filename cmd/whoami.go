package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/humanitec/azvm-wizard/internal/config"
	"github.com/humanitec/azvm-wizard/internal/message"
	"github.com/humanitec/azvm-wizard/internal/utils"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity and subscription the wizard works with",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		provider, err := initializeAzureProvider(cfg)
		if err != nil {
			return err
		}

		caller, err := provider.Caller(ctx)
		if err != nil {
			return fmt.Errorf("failed to identify caller: %w", err)
		}
		message.Info("Application id: %s", caller.ApplicationID)
		message.Info("Object id: %s", caller.ObjectID)
		message.Info("Tenant id: %s", caller.TenantID)
		if cfg.ObjectID != "" && cfg.ObjectID != caller.ObjectID {
			message.Warning("%s is %s but the credentials belong to object %s", config.EnvObjectID, cfg.ObjectID, caller.ObjectID)
		}

		subscription, err := provider.Subscription(ctx)
		if err != nil {
			return err
		}
		message.Success("Subscription %s (%s) is %s",
			utils.DeRefOr(subscription.DisplayName, ""), utils.DeRefOr(subscription.SubscriptionID, ""), utils.String(subscription.State))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
