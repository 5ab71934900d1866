package cloud

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/provider_mock.go . Provider

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azcertificates"
)

// Provider is the set of management and data-plane calls a provisioning run
// makes. Create operations block until the long-running operation is done.
type Provider interface {
	// ResolveObjectID returns the object id of the service principal
	// registered for appID.
	ResolveObjectID(ctx context.Context, appID string) (string, error)

	CreateResourceGroup(ctx context.Context, name string, group armresources.ResourceGroup) (armresources.ResourceGroup, error)
	DeleteResourceGroup(ctx context.Context, name string) error

	CreateVault(ctx context.Context, resourceGroup, name string, params armkeyvault.VaultCreateOrUpdateParameters) (armkeyvault.Vault, error)
	AssignRole(ctx context.Context, scope string, properties armauthorization.RoleAssignmentProperties) error

	BeginCreateCertificate(ctx context.Context, vaultURI, name string, params azcertificates.CreateCertificateParameters) (azcertificates.CertificateOperation, error)
	GetCertificateOperation(ctx context.Context, vaultURI, name string) (azcertificates.CertificateOperation, error)
	GetCertificate(ctx context.Context, vaultURI, name string) (azcertificates.Certificate, error)

	CreateVirtualNetwork(ctx context.Context, resourceGroup, name string, params armnetwork.VirtualNetwork) (armnetwork.VirtualNetwork, error)
	GetSubnet(ctx context.Context, resourceGroup, virtualNetwork, name string) (armnetwork.Subnet, error)
	CreatePublicIP(ctx context.Context, resourceGroup, name string, params armnetwork.PublicIPAddress) (armnetwork.PublicIPAddress, error)
	GetPublicIP(ctx context.Context, resourceGroup, name string) (armnetwork.PublicIPAddress, error)
	CreateNetworkInterface(ctx context.Context, resourceGroup, name string, params armnetwork.Interface) (armnetwork.Interface, error)

	CreateVirtualMachine(ctx context.Context, resourceGroup, name string, params armcompute.VirtualMachine) (armcompute.VirtualMachine, error)
}
