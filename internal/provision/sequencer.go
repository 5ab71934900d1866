package provision

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/humanitec/azvm-wizard/internal/cloud"
	"github.com/humanitec/azvm-wizard/internal/config"
	"github.com/humanitec/azvm-wizard/internal/message"
	"github.com/humanitec/azvm-wizard/internal/names"
	"github.com/humanitec/azvm-wizard/internal/utils"
)

const certificateDirectory = "/var/lib/waagent"

// Run is the state of one provisioning run. It is persisted after every
// step so that an interrupted run can be resumed.
type Run struct {
	ID        string          `json:"id"`
	Names     names.Resources `json:"names"`
	Completed Step            `json:"completed"`

	ObjectID              string `json:"objectId,omitempty"`
	VaultID               string `json:"vaultId,omitempty"`
	VaultURI              string `json:"vaultUri,omitempty"`
	CertificateSecretID   string `json:"certificateSecretId,omitempty"`
	CertificateThumbprint string `json:"certificateThumbprint,omitempty"`
	SubnetID              string `json:"subnetId,omitempty"`
	PublicIPID            string `json:"publicIpId,omitempty"`
	NetworkInterfaceID    string `json:"networkInterfaceId,omitempty"`
	VirtualMachineID      string `json:"virtualMachineId,omitempty"`
	PublicIPAddress       string `json:"publicIpAddress,omitempty"`
	FQDN                  string `json:"fqdn,omitempty"`
	PrivateKeyPath        string `json:"privateKeyPath,omitempty"`
}

// NewRun names every resource of a new run.
func NewRun(generator *names.Generator) (*Run, error) {
	resources, err := names.NewResources(generator)
	if err != nil {
		return nil, fmt.Errorf("failed to generate resource names, %w", err)
	}
	return &Run{
		ID:    uuid.NewString(),
		Names: resources,
	}, nil
}

// Finished reports whether nothing is left to do.
func (r *Run) Finished() bool {
	return r.Completed == StepTeardown
}

type Options struct {
	// Resolver probes the vault DNS name, net.DefaultResolver when nil.
	Resolver Resolver
	Clock    clock.Clock
	// Checkpoint is called after each completed step.
	Checkpoint func(*Run) error
	// Keep skips the teardown step.
	Keep   bool
	Access Access
}

type Sequencer struct {
	cfg      config.Config
	provider cloud.Provider
	opts     Options
}

func NewSequencer(cfg config.Config, provider cloud.Provider, opts Options) *Sequencer {
	if opts.Resolver == nil {
		opts.Resolver = net.DefaultResolver
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	return &Sequencer{cfg: cfg, provider: provider, opts: opts}
}

type stepFunc func(ctx context.Context, run *Run) error

// Execute runs every step the run has not completed yet, in order. It stops
// at the first failure and leaves what was created in place.
func (s *Sequencer) Execute(ctx context.Context, run *Run) error {
	steps := []struct {
		step Step
		fn   stepFunc
	}{
		{StepLookup, s.lookup},
		{StepResourceGroup, s.resourceGroup},
		{StepVault, s.vault},
		{StepCertificate, s.certificate},
		{StepNetwork, s.network},
		{StepVirtualMachine, s.virtualMachine},
		{StepConnectionInfo, s.connectionInfo},
		{StepTeardown, s.teardown},
	}

	for _, st := range steps {
		if st.step <= run.Completed {
			message.Debug("Skipping %s, completed by a previous run", st.step)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.step == StepTeardown && s.opts.Keep {
			message.Info("Keeping Resource Group %s, run 'azvm-wizard clean' to delete it", run.Names.ResourceGroup)
			return nil
		}

		message.Step("%s", st.step)
		if err := st.fn(ctx, run); err != nil {
			return err
		}
		run.Completed = st.step
		if s.opts.Checkpoint != nil {
			if err := s.opts.Checkpoint(run); err != nil {
				return fmt.Errorf("failed to save progress after %s, %w", st.step, err)
			}
		}
	}
	return nil
}

func (s *Sequencer) lookup(ctx context.Context, run *Run) error {
	if s.cfg.ObjectID != "" {
		run.ObjectID = s.cfg.ObjectID
		return nil
	}
	objectID, err := s.provider.ResolveObjectID(ctx, s.cfg.ClientID)
	if err != nil {
		return &DirectoryLookupError{ApplicationID: s.cfg.ClientID, Err: err}
	}
	message.Info("Service Principal object id: %s", objectID)
	run.ObjectID = objectID
	return nil
}

func (s *Sequencer) resourceGroup(ctx context.Context, run *Run) error {
	name := run.Names.ResourceGroup
	group, err := s.provider.CreateResourceGroup(ctx, name, resourceGroupParams(s.cfg.Settings))
	if err != nil {
		return newProvisioningError(StepResourceGroup, name, err)
	}
	var state *string
	if group.Properties != nil {
		state = group.Properties.ProvisioningState
	}
	if err := checkProvisioningState(StepResourceGroup, name, state); err != nil {
		return err
	}
	printItem("Resource Group", name, group.ID, group.Location, utils.String(state))
	return nil
}

func (s *Sequencer) vault(ctx context.Context, run *Run) error {
	name := run.Names.KeyVault
	vault, err := s.provider.CreateVault(ctx, run.Names.ResourceGroup, name, vaultParams(s.cfg, run.ObjectID))
	if err != nil {
		return newProvisioningError(StepVault, name, err)
	}
	if vault.ID == nil || vault.Properties == nil || vault.Properties.VaultURI == nil {
		return newProvisioningError(StepVault, name, errors.New("vault id or URI missing from the response"))
	}
	if err := checkProvisioningState(StepVault, name, vault.Properties.ProvisioningState); err != nil {
		return err
	}
	run.VaultID = *vault.ID
	run.VaultURI = *vault.Properties.VaultURI
	printItem("Key Vault", name, vault.ID, vault.Location, utils.String(vault.Properties.ProvisioningState))

	if s.cfg.Vault.RBAC {
		if err := s.provider.AssignRole(ctx, run.VaultID, certificatesOfficerAssignment(s.cfg.SubscriptionID, run.ObjectID)); err != nil {
			return newProvisioningError(StepVault, name, err)
		}
	}

	return WaitForVault(ctx, s.opts.Resolver, run.VaultURI, s.cfg.Timing.SettleDelay, s.cfg.Timing.SettleProbeInterval)
}

func (s *Sequencer) certificate(ctx context.Context, run *Run) error {
	name := run.Names.Certificate
	if _, err := s.provider.BeginCreateCertificate(ctx, run.VaultURI, name, certificateParams(s.cfg.Certificate)); err != nil {
		return newProvisioningError(StepCertificate, name, err)
	}
	message.Info("Certificate %s requested, waiting for it to be issued", name)

	opts := PollOptionsFromSettings(s.cfg.Timing)
	opts.Clock = s.opts.Clock
	cert, err := WaitForCertificate(ctx, s.provider, run.VaultURI, name, opts)
	if err != nil {
		var timeoutErr *PollTimeoutError
		if errors.As(err, &timeoutErr) || errors.Is(err, context.Canceled) {
			return err
		}
		return newProvisioningError(StepCertificate, name, err)
	}
	if cert.SID == nil {
		return newProvisioningError(StepCertificate, name, ErrCertificateIncomplete)
	}
	run.CertificateSecretID = string(*cert.SID)
	run.CertificateThumbprint = strings.ToUpper(hex.EncodeToString(cert.X509Thumbprint))
	message.Info("Certificate %s\n  secret id: %s", name, run.CertificateSecretID)
	return nil
}

func (s *Sequencer) network(ctx context.Context, run *Run) error {
	rg := run.Names.ResourceGroup

	vnet, err := s.provider.CreateVirtualNetwork(ctx, rg, run.Names.VirtualNetwork, virtualNetworkParams(s.cfg.Settings, run.Names.Subnet))
	if err != nil {
		return newProvisioningError(StepNetwork, run.Names.VirtualNetwork, err)
	}
	var vnetState *armnetwork.ProvisioningState
	if vnet.Properties != nil {
		vnetState = vnet.Properties.ProvisioningState
	}
	if err := checkProvisioningState(StepNetwork, run.Names.VirtualNetwork, vnetState); err != nil {
		return err
	}
	printItem("Virtual Network", run.Names.VirtualNetwork, vnet.ID, vnet.Location, utils.String(vnetState))

	subnet, err := s.provider.GetSubnet(ctx, rg, run.Names.VirtualNetwork, run.Names.Subnet)
	if err != nil {
		return newProvisioningError(StepNetwork, run.Names.Subnet, err)
	}
	if subnet.ID == nil {
		return newProvisioningError(StepNetwork, run.Names.Subnet, errors.New("subnet id missing from the response"))
	}
	run.SubnetID = *subnet.ID
	message.Info("Subnet %s\n  id: %s", run.Names.Subnet, run.SubnetID)

	publicIP, err := s.provider.CreatePublicIP(ctx, rg, run.Names.PublicIP, publicIPParams(s.cfg.Settings, run.Names.DomainNameLabel))
	if err != nil {
		return newProvisioningError(StepNetwork, run.Names.PublicIP, err)
	}
	if publicIP.ID == nil {
		return newProvisioningError(StepNetwork, run.Names.PublicIP, errors.New("public IP id missing from the response"))
	}
	var publicIPState *armnetwork.ProvisioningState
	if publicIP.Properties != nil {
		publicIPState = publicIP.Properties.ProvisioningState
	}
	if err := checkProvisioningState(StepNetwork, run.Names.PublicIP, publicIPState); err != nil {
		return err
	}
	run.PublicIPID = *publicIP.ID
	printItem("Public IP", run.Names.PublicIP, publicIP.ID, publicIP.Location, utils.String(publicIPState))

	nic, err := s.provider.CreateNetworkInterface(ctx, rg, run.Names.NetworkInterface,
		networkInterfaceParams(s.cfg.Location, run.Names.IPConfiguration, run.SubnetID, run.PublicIPID))
	if err != nil {
		return newProvisioningError(StepNetwork, run.Names.NetworkInterface, err)
	}
	if nic.ID == nil {
		return newProvisioningError(StepNetwork, run.Names.NetworkInterface, errors.New("network interface id missing from the response"))
	}
	var nicState *armnetwork.ProvisioningState
	if nic.Properties != nil {
		nicState = nic.Properties.ProvisioningState
	}
	if err := checkProvisioningState(StepNetwork, run.Names.NetworkInterface, nicState); err != nil {
		return err
	}
	run.NetworkInterfaceID = *nic.ID
	printItem("Network Interface", run.Names.NetworkInterface, nic.ID, nic.Location, utils.String(nicState))
	return nil
}

func (s *Sequencer) virtualMachine(ctx context.Context, run *Run) error {
	name := run.Names.VirtualMachine
	params := virtualMachineParams(s.cfg.Settings, run, s.opts.Access)
	message.Debug("Virtual Machine parameters:\n%s", describeVirtualMachine(params))

	vm, err := s.provider.CreateVirtualMachine(ctx, run.Names.ResourceGroup, name, params)
	if err != nil {
		return newProvisioningError(StepVirtualMachine, name, err)
	}
	var state *string
	if vm.Properties != nil {
		state = vm.Properties.ProvisioningState
	}
	if err := checkProvisioningState(StepVirtualMachine, name, state); err != nil {
		return err
	}
	run.VirtualMachineID = utils.DeRefOr(vm.ID, "")
	printItem("Virtual Machine", name, vm.ID, vm.Location, utils.String(state))
	return nil
}

func (s *Sequencer) connectionInfo(ctx context.Context, run *Run) error {
	publicIP, err := s.provider.GetPublicIP(ctx, run.Names.ResourceGroup, run.Names.PublicIP)
	if err != nil {
		return newProvisioningError(StepConnectionInfo, run.Names.PublicIP, err)
	}
	if publicIP.Properties != nil {
		run.PublicIPAddress = utils.DeRefOr(publicIP.Properties.IPAddress, "")
		if publicIP.Properties.DNSSettings != nil {
			run.FQDN = utils.DeRefOr(publicIP.Properties.DNSSettings.Fqdn, "")
		}
	}

	host := run.PublicIPAddress
	if !utils.IsPublicIPv4(host) {
		message.Warning("Public IP %s has no public IPv4 address yet (%q)", run.Names.PublicIP, host)
		host = run.FQDN
	}
	username := s.opts.Access.Username
	if s.opts.Access.Password == "" && run.PrivateKeyPath != "" {
		message.Success("Connect to the Virtual Machine: ssh -i %s %s@%s", run.PrivateKeyPath, username, host)
	} else {
		message.Success("Connect to the Virtual Machine: ssh %s@%s", username, host)
	}
	message.DocumentationReference(
		"The Azure Linux agent installs the vault certificates listed in the OS profile when the Virtual Machine is provisioned.",
		"https://learn.microsoft.com/en-us/azure/virtual-machines/linux/tutorial-secure-web-server",
	)
	if run.CertificateThumbprint != "" {
		message.Info("The certificate is installed as %s/%s.crt, you must be root to read it", certificateDirectory, run.CertificateThumbprint)
	} else {
		message.Info("The certificate is installed in %s, you must be root to read it", certificateDirectory)
	}
	return nil
}

func (s *Sequencer) teardown(ctx context.Context, run *Run) error {
	name := run.Names.ResourceGroup
	message.Info("Deleting Resource Group %s", name)
	if err := s.provider.DeleteResourceGroup(ctx, name); err != nil {
		return newProvisioningError(StepTeardown, name, err)
	}
	message.Success("Resource Group %s deleted", name)
	return nil
}

// checkProvisioningState accepts a missing state; any reported state other
// than Succeeded fails the step.
func checkProvisioningState[S ~string](step Step, resource string, state *S) error {
	if state == nil || string(*state) == "Succeeded" {
		return nil
	}
	return newProvisioningError(step, resource, fmt.Errorf("%w: %s", ErrNotSucceeded, *state))
}

func printItem(kind, name string, id, location *string, state string) {
	message.Info("%s %s\n  id: %s\n  location: %s\n  provisioning state: %s",
		kind, name, utils.DeRefOr(id, ""), utils.DeRefOr(location, ""), state)
}
