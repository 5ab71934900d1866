package provision

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azcertificates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/humanitec/azvm-wizard/internal/cloud"
	"github.com/humanitec/azvm-wizard/internal/cloud/mocks"
	"github.com/humanitec/azvm-wizard/internal/config"
	"github.com/humanitec/azvm-wizard/internal/names"
)

const (
	testVaultID    = "/subscriptions/sub/resourceGroups/testrg1/providers/Microsoft.KeyVault/vaults/testkv9"
	testVaultURI   = "https://testkv9.vault.azure.net/"
	testSecretID   = "https://testkv9.vault.azure.net/secrets/testcert10/0123456789"
	testSubnetID   = "/subscriptions/sub/resourceGroups/testrg1/providers/Microsoft.Network/virtualNetworks/testvnet3/subnets/testsubnet4"
	testPublicIPID = "/subscriptions/sub/resourceGroups/testrg1/providers/Microsoft.Network/publicIPAddresses/testpip5"
	testNICID      = "/subscriptions/sub/resourceGroups/testrg1/providers/Microsoft.Network/networkInterfaces/testnic6"
	testVMID       = "/subscriptions/sub/resourceGroups/testrg1/providers/Microsoft.Compute/virtualMachines/testvm2"
)

type fakeResolver struct {
	failures int
	calls    int
}

func (r *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	r.calls++
	if r.calls <= r.failures {
		return nil, errors.New("no such host")
	}
	return []string{"10.20.30.40"}, nil
}

func testConfig() config.Config {
	settings := config.DefaultSettings()
	settings.Timing.SettleDelay = 50 * time.Millisecond
	settings.Timing.SettleProbeInterval = time.Millisecond
	settings.Timing.PollInterval = time.Millisecond
	settings.Timing.PollMaxInterval = 2 * time.Millisecond
	settings.Timing.PollTimeout = time.Second
	return config.Config{
		Credentials: config.Credentials{
			ClientID:       "app",
			TenantID:       "tenant",
			ClientSecret:   "secret",
			SubscriptionID: "sub",
		},
		Settings: settings,
	}
}

func testRun() *Run {
	return &Run{
		ID: "run",
		Names: names.Resources{
			ResourceGroup:    "testrg1",
			VirtualMachine:   "testvm2",
			VirtualNetwork:   "testvnet3",
			Subnet:           "testsubnet4",
			PublicIP:         "testpip5",
			NetworkInterface: "testnic6",
			IPConfiguration:  "testcrpip7",
			DomainNameLabel:  "testdomainname8",
			KeyVault:         "testkv9",
			Certificate:      "testcert10",
		},
	}
}

func testAccess() Access {
	return Access{Username: "notadmin", SSHPublicKey: "ssh-rsa AAAA", PrivateKeyPath: "/tmp/id_rsa"}
}

func responseError(status int) error {
	return &azcore.ResponseError{
		StatusCode: status,
		ErrorCode:  http.StatusText(status),
		RawResponse: &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Request:    httptest.NewRequest(http.MethodPut, "https://management.azure.com/subscriptions/sub", nil),
		},
	}
}

func succeededGroup() armresources.ResourceGroup {
	return armresources.ResourceGroup{
		ID:         to.Ptr("/subscriptions/sub/resourceGroups/testrg1"),
		Location:   to.Ptr("eastus"),
		Properties: &armresources.ResourceGroupProperties{ProvisioningState: to.Ptr("Succeeded")},
	}
}

func succeededVault() armkeyvault.Vault {
	return armkeyvault.Vault{
		ID:       to.Ptr(testVaultID),
		Location: to.Ptr("eastus"),
		Properties: &armkeyvault.VaultProperties{
			VaultURI:          to.Ptr(testVaultURI),
			ProvisioningState: to.Ptr(armkeyvault.VaultProvisioningStateSucceeded),
		},
	}
}

func operation(status string) azcertificates.CertificateOperation {
	return azcertificates.CertificateOperation{Status: to.Ptr(status)}
}

func issuedCertificate() azcertificates.Certificate {
	return azcertificates.Certificate{
		SID:            to.Ptr(azcertificates.ID(testSecretID)),
		X509Thumbprint: []byte{0xab, 0xcd, 0xef},
	}
}

func networkSucceeded() *armnetwork.ProvisioningState {
	return to.Ptr(armnetwork.ProvisioningStateSucceeded)
}

func TestExecuteCallOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	gomock.InOrder(
		provider.EXPECT().ResolveObjectID(gomock.Any(), "app").Return("object", nil),
		provider.EXPECT().CreateResourceGroup(gomock.Any(), "testrg1", gomock.Any()).Return(succeededGroup(), nil),
		provider.EXPECT().CreateVault(gomock.Any(), "testrg1", "testkv9", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, params armkeyvault.VaultCreateOrUpdateParameters) (armkeyvault.Vault, error) {
				require.Len(t, params.Properties.AccessPolicies, 1)
				assert.Equal(t, "object", *params.Properties.AccessPolicies[0].ObjectID)
				return succeededVault(), nil
			}),
		provider.EXPECT().BeginCreateCertificate(gomock.Any(), testVaultURI, "testcert10", gomock.Any()).Return(operation("inProgress"), nil),
		provider.EXPECT().GetCertificateOperation(gomock.Any(), testVaultURI, "testcert10").Return(operation("inProgress"), nil),
		provider.EXPECT().GetCertificateOperation(gomock.Any(), testVaultURI, "testcert10").Return(operation("completed"), nil),
		provider.EXPECT().GetCertificate(gomock.Any(), testVaultURI, "testcert10").Return(issuedCertificate(), nil),
		provider.EXPECT().CreateVirtualNetwork(gomock.Any(), "testrg1", "testvnet3", gomock.Any()).Return(armnetwork.VirtualNetwork{
			Properties: &armnetwork.VirtualNetworkPropertiesFormat{ProvisioningState: networkSucceeded()},
		}, nil),
		provider.EXPECT().GetSubnet(gomock.Any(), "testrg1", "testvnet3", "testsubnet4").Return(armnetwork.Subnet{ID: to.Ptr(testSubnetID)}, nil),
		provider.EXPECT().CreatePublicIP(gomock.Any(), "testrg1", "testpip5", gomock.Any()).Return(armnetwork.PublicIPAddress{ID: to.Ptr(testPublicIPID)}, nil),
		provider.EXPECT().CreateNetworkInterface(gomock.Any(), "testrg1", "testnic6", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, nic armnetwork.Interface) (armnetwork.Interface, error) {
				ipConfig := nic.Properties.IPConfigurations[0]
				assert.Equal(t, "testcrpip7", *ipConfig.Name)
				assert.Equal(t, testSubnetID, *ipConfig.Properties.Subnet.ID)
				assert.Equal(t, testPublicIPID, *ipConfig.Properties.PublicIPAddress.ID)
				return armnetwork.Interface{ID: to.Ptr(testNICID)}, nil
			}),
		provider.EXPECT().CreateVirtualMachine(gomock.Any(), "testrg1", "testvm2", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, vm armcompute.VirtualMachine) (armcompute.VirtualMachine, error) {
				secrets := vm.Properties.OSProfile.Secrets
				require.Len(t, secrets, 1)
				assert.Equal(t, testVaultID, *secrets[0].SourceVault.ID)
				assert.Equal(t, testSecretID, *secrets[0].VaultCertificates[0].CertificateURL)
				assert.Equal(t, testNICID, *vm.Properties.NetworkProfile.NetworkInterfaces[0].ID)
				return armcompute.VirtualMachine{
					ID:         to.Ptr(testVMID),
					Properties: &armcompute.VirtualMachineProperties{ProvisioningState: to.Ptr("Succeeded")},
				}, nil
			}),
		provider.EXPECT().GetPublicIP(gomock.Any(), "testrg1", "testpip5").Return(armnetwork.PublicIPAddress{
			Properties: &armnetwork.PublicIPAddressPropertiesFormat{IPAddress: to.Ptr("20.1.2.3")},
		}, nil),
		provider.EXPECT().DeleteResourceGroup(gomock.Any(), "testrg1").Return(nil),
	)

	var checkpoints []Step
	run := testRun()
	sequencer := NewSequencer(testConfig(), provider, Options{
		Resolver: &fakeResolver{},
		Checkpoint: func(r *Run) error {
			checkpoints = append(checkpoints, r.Completed)
			return nil
		},
		Access: testAccess(),
	})

	require.NoError(t, sequencer.Execute(context.Background(), run))

	assert.True(t, run.Finished())
	assert.Equal(t, []Step{
		StepLookup, StepResourceGroup, StepVault, StepCertificate, StepNetwork,
		StepVirtualMachine, StepConnectionInfo, StepTeardown,
	}, checkpoints)
	assert.Equal(t, "object", run.ObjectID)
	assert.Equal(t, testSecretID, run.CertificateSecretID)
	assert.Equal(t, "ABCDEF", run.CertificateThumbprint)
	assert.Equal(t, testVMID, run.VirtualMachineID)
	assert.Equal(t, "20.1.2.3", run.PublicIPAddress)
}

func TestExecuteDirectoryLookupFailure(t *testing.T) {
	var tests = []struct {
		name string
		err  error
	}{
		{"no entry", cloud.ErrServicePrincipalNotFound},
		{"graph failure", errors.New("graph unavailable")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := mocks.NewMockProvider(ctrl)
			provider.EXPECT().ResolveObjectID(gomock.Any(), "app").Return("", tc.err)

			run := testRun()
			err := NewSequencer(testConfig(), provider, Options{Resolver: &fakeResolver{}}).Execute(context.Background(), run)

			var lookupErr *DirectoryLookupError
			require.ErrorAs(t, err, &lookupErr)
			assert.Equal(t, "app", lookupErr.ApplicationID)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, StepNone, run.Completed)
		})
	}
}

func TestExecuteStopsOnProvisioningFailure(t *testing.T) {
	var tests = []struct {
		name      string
		group     armresources.ResourceGroup
		err       error
		transient bool
		sentinel  error
	}{
		{
			name:      "throttled",
			err:       responseError(http.StatusTooManyRequests),
			transient: true,
		},
		{
			name:     "forbidden",
			err:      responseError(http.StatusForbidden),
			sentinel: nil,
		},
		{
			name: "failed state",
			group: armresources.ResourceGroup{
				Properties: &armresources.ResourceGroupProperties{ProvisioningState: to.Ptr("Failed")},
			},
			sentinel: ErrNotSucceeded,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := mocks.NewMockProvider(ctrl)
			provider.EXPECT().CreateResourceGroup(gomock.Any(), "testrg1", gomock.Any()).Return(tc.group, tc.err)

			cfg := testConfig()
			cfg.ObjectID = "configured"
			run := testRun()
			err := NewSequencer(cfg, provider, Options{Resolver: &fakeResolver{}}).Execute(context.Background(), run)

			var provisioningErr *ProvisioningError
			require.ErrorAs(t, err, &provisioningErr)
			assert.Equal(t, StepResourceGroup, provisioningErr.Step)
			assert.Equal(t, "testrg1", provisioningErr.Resource)
			assert.Equal(t, tc.transient, provisioningErr.Transient)
			if tc.sentinel != nil {
				assert.ErrorIs(t, err, tc.sentinel)
			}
			assert.Equal(t, "configured", run.ObjectID)
			assert.Equal(t, StepLookup, run.Completed)
		})
	}
}

func TestExecuteResumesAfterCompletedSteps(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	gomock.InOrder(
		provider.EXPECT().CreateVirtualMachine(gomock.Any(), "testrg1", "testvm2", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, vm armcompute.VirtualMachine) (armcompute.VirtualMachine, error) {
				assert.Equal(t, testSecretID, *vm.Properties.OSProfile.Secrets[0].VaultCertificates[0].CertificateURL)
				return armcompute.VirtualMachine{ID: to.Ptr(testVMID)}, nil
			}),
		provider.EXPECT().GetPublicIP(gomock.Any(), "testrg1", "testpip5").Return(armnetwork.PublicIPAddress{
			Properties: &armnetwork.PublicIPAddressPropertiesFormat{
				IPAddress:   to.Ptr("20.1.2.3"),
				DNSSettings: &armnetwork.PublicIPAddressDNSSettings{Fqdn: to.Ptr("testdomainname8.eastus.cloudapp.azure.com")},
			},
		}, nil),
	)

	run := testRun()
	run.Completed = StepNetwork
	run.ObjectID = "object"
	run.VaultID = testVaultID
	run.VaultURI = testVaultURI
	run.CertificateSecretID = testSecretID
	run.SubnetID = testSubnetID
	run.PublicIPID = testPublicIPID
	run.NetworkInterfaceID = testNICID

	err := NewSequencer(testConfig(), provider, Options{
		Resolver: &fakeResolver{},
		Keep:     true,
		Access:   testAccess(),
	}).Execute(context.Background(), run)
	require.NoError(t, err)

	assert.Equal(t, StepConnectionInfo, run.Completed)
	assert.False(t, run.Finished())
	assert.Equal(t, "testdomainname8.eastus.cloudapp.azure.com", run.FQDN)
}

func TestExecuteAssignsRoleForRBACVault(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	cfg := testConfig()
	cfg.ObjectID = "object"
	cfg.Vault.RBAC = true

	gomock.InOrder(
		provider.EXPECT().CreateResourceGroup(gomock.Any(), "testrg1", gomock.Any()).Return(succeededGroup(), nil),
		provider.EXPECT().CreateVault(gomock.Any(), "testrg1", "testkv9", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ string, params armkeyvault.VaultCreateOrUpdateParameters) (armkeyvault.Vault, error) {
				assert.True(t, *params.Properties.EnableRbacAuthorization)
				assert.Empty(t, params.Properties.AccessPolicies)
				return succeededVault(), nil
			}),
		provider.EXPECT().AssignRole(gomock.Any(), testVaultID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, properties armauthorization.RoleAssignmentProperties) error {
				assert.Equal(t, "object", *properties.PrincipalID)
				assert.Contains(t, *properties.RoleDefinitionID, certificatesOfficerRoleID)
				return nil
			}),
		provider.EXPECT().BeginCreateCertificate(gomock.Any(), testVaultURI, "testcert10", gomock.Any()).
			Return(azcertificates.CertificateOperation{}, responseError(http.StatusForbidden)),
	)

	run := testRun()
	err := NewSequencer(cfg, provider, Options{Resolver: &fakeResolver{}}).Execute(context.Background(), run)

	var provisioningErr *ProvisioningError
	require.ErrorAs(t, err, &provisioningErr)
	assert.Equal(t, StepCertificate, provisioningErr.Step)
	assert.Equal(t, StepVault, run.Completed)
}

func TestExecuteHonoursCancellation(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run := testRun()
	err := NewSequencer(testConfig(), provider, Options{Resolver: &fakeResolver{}}).Execute(ctx, run)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StepNone, run.Completed)
}

func TestExecuteCheckpointFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	cfg := testConfig()
	cfg.ObjectID = "object"
	run := testRun()
	err := NewSequencer(cfg, provider, Options{
		Resolver: &fakeResolver{},
		Checkpoint: func(*Run) error {
			return errors.New("disk full")
		},
	}).Execute(context.Background(), run)

	assert.ErrorContains(t, err, "failed to save progress after lookup")
}

func TestNewRun(t *testing.T) {
	run, err := NewRun(names.NewGenerator())
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StepNone, run.Completed)
	assert.Regexp(t, `^testrg\d+$`, run.Names.ResourceGroup)
}
