package cloud

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azcertificates"
	"github.com/google/uuid"
	kiotaauth "github.com/microsoft/kiota-authentication-azure-go"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/microsoftgraph/msgraph-sdk-go/serviceprincipals"

	"github.com/humanitec/azvm-wizard/internal/config"
	"github.com/humanitec/azvm-wizard/internal/message"
)

type AzureOptions struct {
	// Retry applies to every HTTP call; azcore retries throttling, timeouts
	// and 5xx responses with exponential backoff.
	Retry policy.RetryOptions
	// Frequency is how often long-running operations are polled.
	Frequency time.Duration
	// Transport replaces the HTTP client, tests only.
	Transport policy.Transporter
	// GraphClient replaces the HTTP client of Microsoft Graph requests,
	// tests only.
	GraphClient *http.Client
	// RoleAssignmentTimeout bounds the retries of AssignRole while a new
	// principal propagates.
	RoleAssignmentTimeout time.Duration
	// RoleAssignmentInterval is the pause between two AssignRole attempts.
	RoleAssignmentInterval time.Duration
}

var (
	graphScopes = []string{"https://graph.microsoft.com/.default"}
	graphHosts  = []string{"graph.microsoft.com"}
)

// AzureProvider implements Provider on top of the Azure SDK for Go.
type AzureProvider struct {
	subscriptionID         string
	credential             azcore.TokenCredential
	clientOptions          policy.ClientOptions
	frequency              time.Duration
	graphClient            *http.Client
	roleAssignmentTimeout  time.Duration
	roleAssignmentInterval time.Duration

	resourceGroups  *armresources.ResourceGroupsClient
	vaults          *armkeyvault.VaultsClient
	roleAssignments *armauthorization.RoleAssignmentsClient
	virtualNetworks *armnetwork.VirtualNetworksClient
	subnets         *armnetwork.SubnetsClient
	publicIPs       *armnetwork.PublicIPAddressesClient
	interfaces      *armnetwork.InterfacesClient
	virtualMachines *armcompute.VirtualMachinesClient
	subscriptions   *armsubscriptions.Client
	certificates    map[string]*azcertificates.Client
}

var _ Provider = (*AzureProvider)(nil)

// NewAzureProvider authenticates as the service principal in creds.
func NewAzureProvider(creds config.Credentials, opts AzureOptions) (*AzureProvider, error) {
	cred, err := azidentity.NewClientSecretCredential(creds.TenantID, creds.ClientID, creds.ClientSecret,
		&azidentity.ClientSecretCredentialOptions{
			ClientOptions: policy.ClientOptions{Retry: opts.Retry, Transport: opts.Transport},
		})
	if err != nil {
		return nil, fmt.Errorf("failed to load azure client secret credentials, %w", err)
	}
	return newAzureProvider(creds.SubscriptionID, cred, opts)
}

func newAzureProvider(subscriptionID string, cred azcore.TokenCredential, opts AzureOptions) (*AzureProvider, error) {
	p := &AzureProvider{
		subscriptionID:         subscriptionID,
		credential:             cred,
		clientOptions:          policy.ClientOptions{Retry: opts.Retry, Transport: opts.Transport},
		frequency:              opts.Frequency,
		graphClient:            opts.GraphClient,
		roleAssignmentTimeout:  opts.RoleAssignmentTimeout,
		roleAssignmentInterval: opts.RoleAssignmentInterval,
		certificates:           map[string]*azcertificates.Client{},
	}
	if p.roleAssignmentTimeout == 0 {
		p.roleAssignmentTimeout = 30 * time.Second
	}
	if p.roleAssignmentInterval == 0 {
		p.roleAssignmentInterval = 5 * time.Second
	}
	armOptions := &arm.ClientOptions{ClientOptions: p.clientOptions}

	var err error
	if p.resourceGroups, err = armresources.NewResourceGroupsClient(subscriptionID, cred, armOptions); err != nil {
		return nil, fmt.Errorf("failed to create Resource Group client, %w", err)
	}
	if p.vaults, err = armkeyvault.NewVaultsClient(subscriptionID, cred, armOptions); err != nil {
		return nil, fmt.Errorf("failed to create Azure Key Vault client, %w", err)
	}
	authFactory, err := armauthorization.NewClientFactory(subscriptionID, cred, armOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure authorization client, %w", err)
	}
	p.roleAssignments = authFactory.NewRoleAssignmentsClient()
	if p.virtualNetworks, err = armnetwork.NewVirtualNetworksClient(subscriptionID, cred, armOptions); err != nil {
		return nil, fmt.Errorf("failed to create Virtual Network client, %w", err)
	}
	if p.subnets, err = armnetwork.NewSubnetsClient(subscriptionID, cred, armOptions); err != nil {
		return nil, fmt.Errorf("failed to create Subnet client, %w", err)
	}
	if p.publicIPs, err = armnetwork.NewPublicIPAddressesClient(subscriptionID, cred, armOptions); err != nil {
		return nil, fmt.Errorf("failed to create Public IP client, %w", err)
	}
	if p.interfaces, err = armnetwork.NewInterfacesClient(subscriptionID, cred, armOptions); err != nil {
		return nil, fmt.Errorf("failed to create Network Interface client, %w", err)
	}
	if p.virtualMachines, err = armcompute.NewVirtualMachinesClient(subscriptionID, cred, armOptions); err != nil {
		return nil, fmt.Errorf("failed to create Virtual Machine client, %w", err)
	}
	if p.subscriptions, err = armsubscriptions.NewClient(cred, armOptions); err != nil {
		return nil, fmt.Errorf("failed to create Subscription client, %w", err)
	}
	return p, nil
}

func (p *AzureProvider) pollOptions() *runtime.PollUntilDoneOptions {
	return &runtime.PollUntilDoneOptions{Frequency: p.frequency}
}

// servicePrincipalFilter matches the service principal of an application.
// Quotes are doubled as OData string literals require.
func servicePrincipalFilter(appID string) string {
	return "appId eq '" + strings.ReplaceAll(appID, "'", "''") + "'"
}

func (p *AzureProvider) newGraphClient() (*msgraphsdk.GraphServiceClient, error) {
	auth, err := kiotaauth.NewAzureIdentityAuthenticationProviderWithScopesAndValidHosts(p.credential, graphScopes, graphHosts)
	if err != nil {
		return nil, err
	}
	// a nil HTTP client selects the default Graph middleware
	adapter, err := msgraphsdk.NewGraphRequestAdapterWithParseNodeFactoryAndSerializationWriterFactoryAndHttpClient(auth, nil, nil, p.graphClient)
	if err != nil {
		return nil, err
	}
	return msgraphsdk.NewGraphServiceClient(adapter), nil
}

func (p *AzureProvider) ResolveObjectID(ctx context.Context, appID string) (string, error) {
	grClient, err := p.newGraphClient()
	if err != nil {
		return "", fmt.Errorf("failed to create Graph client, %w", err)
	}
	result, err := grClient.ServicePrincipals().Get(ctx, &serviceprincipals.ServicePrincipalsRequestBuilderGetRequestConfiguration{
		QueryParameters: &serviceprincipals.ServicePrincipalsRequestBuilderGetQueryParameters{
			Filter: to.Ptr(servicePrincipalFilter(appID)),
			Select: []string{"id", "appId", "displayName"},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to list service principals, %w", err)
	}
	principals := result.GetValue()
	if len(principals) == 0 || principals[0].GetId() == nil {
		return "", fmt.Errorf("%w for application id %s", ErrServicePrincipalNotFound, appID)
	}
	return *principals[0].GetId(), nil
}

func (p *AzureProvider) CreateResourceGroup(ctx context.Context, name string, group armresources.ResourceGroup) (armresources.ResourceGroup, error) {
	resp, err := p.resourceGroups.CreateOrUpdate(ctx, name, group, nil)
	if err != nil {
		return armresources.ResourceGroup{}, fmt.Errorf("failed to create Resource Group %s, %w", name, err)
	}
	return resp.ResourceGroup, nil
}

func (p *AzureProvider) DeleteResourceGroup(ctx context.Context, name string) error {
	poller, err := p.resourceGroups.BeginDelete(ctx, name, nil)
	if err != nil {
		return fmt.Errorf("failed to delete Resource Group %s, %w", name, err)
	}
	if _, err = poller.PollUntilDone(ctx, p.pollOptions()); err != nil {
		return fmt.Errorf("failed waiting for Resource Group %s deletion, %w", name, err)
	}
	return nil
}

func (p *AzureProvider) CreateVault(ctx context.Context, resourceGroup, name string, params armkeyvault.VaultCreateOrUpdateParameters) (armkeyvault.Vault, error) {
	poller, err := p.vaults.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armkeyvault.Vault{}, fmt.Errorf("failed to create Azure Key Vault %s, %w", name, err)
	}
	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return armkeyvault.Vault{}, fmt.Errorf("failed waiting for Azure Key Vault %s, %w", name, err)
	}
	return resp.Vault, nil
}

func (p *AzureProvider) AssignRole(ctx context.Context, scope string, properties armauthorization.RoleAssignmentProperties) error {
	timeoutAfter := time.After(p.roleAssignmentTimeout)
	ticker := time.NewTicker(p.roleAssignmentInterval)
	tick := ticker.C
	defer ticker.Stop()

	err := p.createRoleAssignment(ctx, scope, properties)
	for err != nil {
		message.Debug("error creating role assignment, retrying: %v", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeoutAfter:
			return fmt.Errorf("error creating role assignment (retry timeout exceeded), %w", err)
		case <-tick:
			err = p.createRoleAssignment(ctx, scope, properties)
		}
	}
	return nil
}

func (p *AzureProvider) createRoleAssignment(ctx context.Context, scope string, properties armauthorization.RoleAssignmentProperties) error {
	roleAssignmentName := uuid.New().String()
	resp, err := p.roleAssignments.Create(ctx, scope, roleAssignmentName, armauthorization.RoleAssignmentCreateParameters{
		Properties: &properties,
	}, nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.ErrorCode == "RoleAssignmentExists" {
			message.Info("Role Assignment already exists")
			return nil
		}
		return fmt.Errorf("failed to create Role Assignment, %w", err)
	}
	message.Info("Role Assignment created: %s", *resp.Name)
	return nil
}

func (p *AzureProvider) certificateClient(vaultURI string) (*azcertificates.Client, error) {
	if client, ok := p.certificates[vaultURI]; ok {
		return client, nil
	}
	client, err := azcertificates.NewClient(vaultURI, p.credential, &azcertificates.ClientOptions{
		ClientOptions: p.clientOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate client for %s, %w", vaultURI, err)
	}
	p.certificates[vaultURI] = client
	return client, nil
}

func (p *AzureProvider) BeginCreateCertificate(ctx context.Context, vaultURI, name string, params azcertificates.CreateCertificateParameters) (azcertificates.CertificateOperation, error) {
	client, err := p.certificateClient(vaultURI)
	if err != nil {
		return azcertificates.CertificateOperation{}, err
	}
	resp, err := client.CreateCertificate(ctx, name, params, nil)
	if err != nil {
		return azcertificates.CertificateOperation{}, fmt.Errorf("failed to create certificate %s, %w", name, err)
	}
	return resp.CertificateOperation, nil
}

func (p *AzureProvider) GetCertificateOperation(ctx context.Context, vaultURI, name string) (azcertificates.CertificateOperation, error) {
	client, err := p.certificateClient(vaultURI)
	if err != nil {
		return azcertificates.CertificateOperation{}, err
	}
	resp, err := client.GetCertificateOperation(ctx, name, nil)
	if err != nil {
		return azcertificates.CertificateOperation{}, fmt.Errorf("failed to get certificate operation %s, %w", name, err)
	}
	return resp.CertificateOperation, nil
}

func (p *AzureProvider) GetCertificate(ctx context.Context, vaultURI, name string) (azcertificates.Certificate, error) {
	client, err := p.certificateClient(vaultURI)
	if err != nil {
		return azcertificates.Certificate{}, err
	}
	// An empty version selects the latest one.
	resp, err := client.GetCertificate(ctx, name, "", nil)
	if err != nil {
		return azcertificates.Certificate{}, fmt.Errorf("failed to get certificate %s, %w", name, err)
	}
	return resp.Certificate, nil
}

func (p *AzureProvider) CreateVirtualNetwork(ctx context.Context, resourceGroup, name string, params armnetwork.VirtualNetwork) (armnetwork.VirtualNetwork, error) {
	poller, err := p.virtualNetworks.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armnetwork.VirtualNetwork{}, fmt.Errorf("failed to create Virtual Network %s, %w", name, err)
	}
	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return armnetwork.VirtualNetwork{}, fmt.Errorf("failed waiting for Virtual Network %s, %w", name, err)
	}
	return resp.VirtualNetwork, nil
}

func (p *AzureProvider) GetSubnet(ctx context.Context, resourceGroup, virtualNetwork, name string) (armnetwork.Subnet, error) {
	resp, err := p.subnets.Get(ctx, resourceGroup, virtualNetwork, name, nil)
	if err != nil {
		return armnetwork.Subnet{}, fmt.Errorf("failed to get Subnet %s, %w", name, err)
	}
	return resp.Subnet, nil
}

func (p *AzureProvider) CreatePublicIP(ctx context.Context, resourceGroup, name string, params armnetwork.PublicIPAddress) (armnetwork.PublicIPAddress, error) {
	poller, err := p.publicIPs.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armnetwork.PublicIPAddress{}, fmt.Errorf("failed to create Public IP %s, %w", name, err)
	}
	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return armnetwork.PublicIPAddress{}, fmt.Errorf("failed waiting for Public IP %s, %w", name, err)
	}
	return resp.PublicIPAddress, nil
}

func (p *AzureProvider) GetPublicIP(ctx context.Context, resourceGroup, name string) (armnetwork.PublicIPAddress, error) {
	resp, err := p.publicIPs.Get(ctx, resourceGroup, name, nil)
	if err != nil {
		return armnetwork.PublicIPAddress{}, fmt.Errorf("failed to get Public IP %s, %w", name, err)
	}
	return resp.PublicIPAddress, nil
}

func (p *AzureProvider) CreateNetworkInterface(ctx context.Context, resourceGroup, name string, params armnetwork.Interface) (armnetwork.Interface, error) {
	poller, err := p.interfaces.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armnetwork.Interface{}, fmt.Errorf("failed to create Network Interface %s, %w", name, err)
	}
	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return armnetwork.Interface{}, fmt.Errorf("failed waiting for Network Interface %s, %w", name, err)
	}
	return resp.Interface, nil
}

func (p *AzureProvider) CreateVirtualMachine(ctx context.Context, resourceGroup, name string, params armcompute.VirtualMachine) (armcompute.VirtualMachine, error) {
	poller, err := p.virtualMachines.BeginCreateOrUpdate(ctx, resourceGroup, name, params, nil)
	if err != nil {
		return armcompute.VirtualMachine{}, fmt.Errorf("failed to create Virtual Machine %s, %w", name, err)
	}
	resp, err := poller.PollUntilDone(ctx, p.pollOptions())
	if err != nil {
		return armcompute.VirtualMachine{}, fmt.Errorf("failed waiting for Virtual Machine %s, %w", name, err)
	}
	return resp.VirtualMachine, nil
}
