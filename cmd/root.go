package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/humanitec/azvm-wizard/internal/message"
)

var silentMode bool
var verboseMode bool
var noEmoji bool
var noColor bool
var configFile string

var rootCmd = &cobra.Command{
	Use:           "azvm-wizard",
	Short:         "Provision an Azure virtual machine with a key vault certificate",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		message.SetSilentMode(silentMode)
		message.SetVerboseMode(verboseMode)
		message.SetEmojiMode(!noEmoji)
		message.SetColorMode(!noColor)
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		message.Error("failed to execute command: %v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&silentMode, "silent", false, "silent mode (hides everything except prompt/failure messages)")
	rootCmd.PersistentFlags().BoolVar(&verboseMode, "verbose", false, "verbose output (show everything, overrides silent mode)")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emojis")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colors and emojis")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "settings file (default ~/.azvm-wizard/config.yaml)")
}
