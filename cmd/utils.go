package cmd

import (
	"fmt"
	"os"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/humanitec/azvm-wizard/internal/cloud"
	"github.com/humanitec/azvm-wizard/internal/config"
	"github.com/humanitec/azvm-wizard/internal/message"
	"github.com/humanitec/azvm-wizard/internal/provision"
	"github.com/humanitec/azvm-wizard/internal/session"
)

func loadConfig() (config.Config, error) {
	creds, err := config.CredentialsFromEnv(os.LookupEnv)
	if err != nil {
		return config.Config{}, err
	}

	filename := configFile
	if filename == "" {
		filename, err = config.DefaultConfigFile()
		if err != nil {
			return config.Config{}, err
		}
	}
	settings, err := config.LoadSettings(filename)
	if err != nil {
		return config.Config{}, err
	}
	message.Debug("Settings loaded from %s", filename)

	return config.Config{Credentials: creds, Settings: settings}, nil
}

func initializeAzureProvider(cfg config.Config) (*cloud.AzureProvider, error) {
	provider, err := cloud.NewAzureProvider(cfg.Credentials, cloud.AzureOptions{
		Retry: policy.RetryOptions{
			MaxRetries:    cfg.Retry.MaxRetries,
			RetryDelay:    cfg.Retry.RetryDelay,
			MaxRetryDelay: cfg.Retry.MaxRetryDelay,
			StatusCodes:   cloud.TransientStatusCodes,
		},
		Frequency: cfg.Timing.OperationFrequency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize azure provider: %w", err)
	}
	return provider, nil
}

func runKeyDirectory(run *provision.Run) (string, error) {
	dirname, err := session.Directory()
	if err != nil {
		return "", err
	}
	return path.Join(dirname, run.ID), nil
}

func removeRunKeys(run *provision.Run) {
	dirname, err := runKeyDirectory(run)
	if err != nil {
		message.Debug("failed to locate key pair of run %s: %v", run.ID, err)
		return
	}
	if err := os.RemoveAll(dirname); err != nil {
		message.Warning("failed to remove key pair directory %s: %v", dirname, err)
	}
}
