package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"
)

const (
	EnvClientID       = "AZURE_CLIENT_ID"
	EnvTenantID       = "AZURE_TENANT_ID"
	EnvClientSecret   = "AZURE_CLIENT_SECRET"
	EnvSubscriptionID = "AZURE_SUBSCRIPTION_ID"
	EnvObjectID       = "AZURE_OBJECT_ID"
	EnvAdminPassword  = "AZURE_VM_ADMIN_PASSWORD"

	configFileDirectory = ".azvm-wizard"
	configFileName      = "config.yaml"
)

// ConfigurationError is returned before any network call when the process
// configuration is incomplete or invalid.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("please set/export the following environment variables: %s", strings.Join(e.Missing, ",")))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("invalid settings: %s", strings.Join(e.Invalid, "; ")))
	}
	return strings.Join(parts, "; ")
}

// Credentials identify the service principal the tool authenticates as.
type Credentials struct {
	ClientID       string
	TenantID       string
	ClientSecret   string
	SubscriptionID string
	// ObjectID is optional; it is looked up in the directory when empty.
	ObjectID string
	// AdminPassword is optional; an SSH key pair is generated when empty.
	AdminPassword string
}

// CredentialsFromEnv reads the credentials through lookup (os.LookupEnv in
// production). Every missing required variable is reported in one error.
func CredentialsFromEnv(lookup func(string) (string, bool)) (Credentials, error) {
	get := func(name string) string {
		v, _ := lookup(name)
		return strings.TrimSpace(v)
	}

	creds := Credentials{
		ClientID:       get(EnvClientID),
		TenantID:       get(EnvTenantID),
		ClientSecret:   get(EnvClientSecret),
		SubscriptionID: get(EnvSubscriptionID),
		ObjectID:       get(EnvObjectID),
		AdminPassword:  get(EnvAdminPassword),
	}

	var missing []string
	for _, required := range []struct {
		name  string
		value string
	}{
		{EnvClientID, creds.ClientID},
		{EnvTenantID, creds.TenantID},
		{EnvClientSecret, creds.ClientSecret},
		{EnvSubscriptionID, creds.SubscriptionID},
	} {
		if required.value == "" {
			missing = append(missing, required.name)
		}
	}
	// the client id ends up in a directory query, only a UUID is accepted
	var invalid []string
	if creds.ClientID != "" {
		if _, err := uuid.Parse(creds.ClientID); err != nil {
			invalid = append(invalid, fmt.Sprintf("%s must be an application (client) id, got %q", EnvClientID, creds.ClientID))
		}
	}
	if len(missing) > 0 || len(invalid) > 0 {
		return Credentials{}, &ConfigurationError{Missing: missing, Invalid: invalid}
	}
	return creds, nil
}

type ImageReference struct {
	Publisher string `yaml:"publisher"`
	Offer     string `yaml:"offer"`
	SKU       string `yaml:"sku"`
	Version   string `yaml:"version"`
}

type NetworkSettings struct {
	AddressPrefix      string   `yaml:"addressPrefix"`
	SubnetPrefix       string   `yaml:"subnetPrefix"`
	DNSServers         []string `yaml:"dnsServers"`
	PublicIPAllocation string   `yaml:"publicIPAllocation"`
}

type CertificateSettings struct {
	Subject            string   `yaml:"subject"`
	ValidityInMonths   int32    `yaml:"validityInMonths"`
	KeySize            int32    `yaml:"keySize"`
	ContentType        string   `yaml:"contentType"`
	KeyUsage           []string `yaml:"keyUsage"`
	LifetimePercentage int32    `yaml:"lifetimePercentage"`
}

type VaultSettings struct {
	// RBAC switches the vault to Azure RBAC authorization and grants the
	// caller a role assignment instead of an access policy.
	RBAC bool `yaml:"rbac"`
}

type TimingSettings struct {
	SettleDelay         time.Duration `yaml:"settleDelay"`
	SettleProbeInterval time.Duration `yaml:"settleProbeInterval"`
	PollInterval        time.Duration `yaml:"pollInterval"`
	PollMaxInterval     time.Duration `yaml:"pollMaxInterval"`
	PollBackoff         bool          `yaml:"pollBackoff"`
	PollTimeout         time.Duration `yaml:"pollTimeout"`
	PollMaxAttempts     int           `yaml:"pollMaxAttempts"`
	OperationFrequency  time.Duration `yaml:"operationFrequency"`
}

type RetrySettings struct {
	MaxRetries    int32         `yaml:"maxRetries"`
	RetryDelay    time.Duration `yaml:"retryDelay"`
	MaxRetryDelay time.Duration `yaml:"maxRetryDelay"`
}

// Settings is everything about a run that is not a credential.
type Settings struct {
	Location      string              `yaml:"location"`
	Tags          map[string]string   `yaml:"tags"`
	Image         ImageReference      `yaml:"image"`
	VMSize        string              `yaml:"vmSize"`
	AdminUsername string              `yaml:"adminUsername"`
	Network       NetworkSettings     `yaml:"network"`
	Certificate   CertificateSettings `yaml:"certificate"`
	Vault         VaultSettings       `yaml:"vault"`
	Timing        TimingSettings      `yaml:"timing"`
	Retry         RetrySettings       `yaml:"retry"`
}

// Config is the immutable input of one provisioning run.
type Config struct {
	Credentials
	Settings
}

func DefaultSettings() Settings {
	return Settings{
		Location: "eastus",
		Tags:     map[string]string{"sampletag": "sampleValue"},
		Image: ImageReference{
			Publisher: "Canonical",
			Offer:     "0001-com-ubuntu-server-focal",
			SKU:       "20_04-lts-gen2",
			Version:   "latest",
		},
		VMSize:        "Standard_D2s_v3",
		AdminUsername: "notadmin",
		Network: NetworkSettings{
			AddressPrefix:      "10.0.0.0/16",
			SubnetPrefix:       "10.0.0.0/24",
			DNSServers:         []string{"10.1.1.1", "10.1.2.4"},
			PublicIPAllocation: "Dynamic",
		},
		Certificate: CertificateSettings{
			Subject:          "CN=CLIGetDefaultPolicy",
			ValidityInMonths: 12,
			KeySize:          2048,
			ContentType:      "application/x-pkcs12",
			KeyUsage: []string{
				"cRLSign",
				"dataEncipherment",
				"digitalSignature",
				"keyEncipherment",
				"keyAgreement",
				"keyCertSign",
			},
			LifetimePercentage: 90,
		},
		Timing: TimingSettings{
			SettleDelay:         20 * time.Second,
			SettleProbeInterval: 2 * time.Second,
			PollInterval:        5 * time.Second,
			PollMaxInterval:     30 * time.Second,
			PollBackoff:         true,
			PollTimeout:         10 * time.Minute,
			OperationFrequency:  5 * time.Second,
		},
		Retry: RetrySettings{
			MaxRetries:    5,
			RetryDelay:    4 * time.Second,
			MaxRetryDelay: 60 * time.Second,
		},
	}
}

// DefaultConfigFile returns the path of the optional settings file.
func DefaultConfigFile() (string, error) {
	dirname, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return path.Join(dirname, configFileDirectory, configFileName), nil
}

// LoadSettings returns the defaults overridden by the YAML file at
// filename. A missing file is not an error.
func LoadSettings(filename string) (Settings, error) {
	settings := DefaultSettings()
	if filename == "" {
		return settings, nil
	}

	configFile, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return Settings{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(configFile, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config file: %w", err)
	}
	return settings, nil
}

// Validate reports every invalid field in one ConfigurationError.
func (s Settings) Validate() error {
	var invalid []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			invalid = append(invalid, fmt.Sprintf(format, args...))
		}
	}

	check(s.Location != "", "location is required")
	check(s.VMSize != "", "vmSize is required")
	check(s.AdminUsername != "", "adminUsername is required")
	check(s.Image.Publisher != "" && s.Image.Offer != "" && s.Image.SKU != "", "image publisher, offer and sku are required")
	check(s.Network.AddressPrefix != "", "network.addressPrefix is required")
	check(s.Network.SubnetPrefix != "", "network.subnetPrefix is required")
	check(s.Network.PublicIPAllocation == "Dynamic" || s.Network.PublicIPAllocation == "Static",
		"network.publicIPAllocation must be Dynamic or Static, got %q", s.Network.PublicIPAllocation)
	check(s.Certificate.Subject != "", "certificate.subject is required")
	check(s.Certificate.KeySize > 0, "certificate.keySize must be positive")
	check(s.Certificate.ValidityInMonths > 0, "certificate.validityInMonths must be positive")
	check(s.Timing.SettleDelay >= 0, "timing.settleDelay must not be negative")
	check(s.Timing.SettleProbeInterval > 0, "timing.settleProbeInterval must be positive")
	check(s.Timing.PollInterval > 0, "timing.pollInterval must be positive")
	check(s.Timing.PollMaxInterval >= s.Timing.PollInterval, "timing.pollMaxInterval must not be lower than timing.pollInterval")
	check(s.Timing.PollTimeout > 0 || s.Timing.PollMaxAttempts > 0, "one of timing.pollTimeout or timing.pollMaxAttempts must be set")
	check(s.Timing.PollMaxAttempts >= 0, "timing.pollMaxAttempts must not be negative")
	check(s.Timing.OperationFrequency > 0, "timing.operationFrequency must be positive")
	check(s.Retry.MaxRetries >= 0, "retry.maxRetries must not be negative")

	if len(invalid) > 0 {
		return &ConfigurationError{Invalid: invalid}
	}
	return nil
}
