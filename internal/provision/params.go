package provision

import (
	"encoding/json"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/keyvault/armkeyvault"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azcertificates"

	"github.com/humanitec/azvm-wizard/internal/config"
)

const (
	// Key Vault Certificates Officer
	certificatesOfficerRoleID = "a4417e6f-fecd-4de8-b567-7b0420556985"

	authorizedKeysPathFormat = "/home/%s/.ssh/authorized_keys"
)

// Access is how the admin user logs in to the virtual machine. Password
// wins over SSHPublicKey when both are set.
type Access struct {
	Username       string
	Password       string
	SSHPublicKey   string
	PrivateKeyPath string
}

func tags(settings config.Settings) map[string]*string {
	result := make(map[string]*string, len(settings.Tags))
	for k, v := range settings.Tags {
		result[k] = to.Ptr(v)
	}
	return result
}

func resourceGroupParams(settings config.Settings) armresources.ResourceGroup {
	return armresources.ResourceGroup{
		Location: to.Ptr(settings.Location),
		Tags:     tags(settings),
	}
}

func vaultParams(cfg config.Config, objectID string) armkeyvault.VaultCreateOrUpdateParameters {
	properties := &armkeyvault.VaultProperties{
		TenantID: to.Ptr(cfg.TenantID),
		SKU: &armkeyvault.SKU{
			Family: to.Ptr(armkeyvault.SKUFamilyA),
			Name:   to.Ptr(armkeyvault.SKUNameStandard),
		},
		EnabledForDeployment: to.Ptr(true),
	}
	if cfg.Vault.RBAC {
		properties.EnableRbacAuthorization = to.Ptr(true)
	} else {
		properties.AccessPolicies = []*armkeyvault.AccessPolicyEntry{
			{
				TenantID: to.Ptr(cfg.TenantID),
				ObjectID: to.Ptr(objectID),
				Permissions: &armkeyvault.Permissions{
					Certificates: []*armkeyvault.CertificatePermissions{
						to.Ptr(armkeyvault.CertificatePermissionsGet),
						to.Ptr(armkeyvault.CertificatePermissionsList),
						to.Ptr(armkeyvault.CertificatePermissionsCreate),
						to.Ptr(armkeyvault.CertificatePermissionsUpdate),
					},
					Secrets: []*armkeyvault.SecretPermissions{
						to.Ptr(armkeyvault.SecretPermissionsGet),
						to.Ptr(armkeyvault.SecretPermissionsList),
					},
				},
			},
		}
	}
	return armkeyvault.VaultCreateOrUpdateParameters{
		Location:   to.Ptr(cfg.Location),
		Properties: properties,
		Tags:       tags(cfg.Settings),
	}
}

func certificatesOfficerAssignment(subscriptionID, objectID string) armauthorization.RoleAssignmentProperties {
	return armauthorization.RoleAssignmentProperties{
		PrincipalID:      to.Ptr(objectID),
		PrincipalType:    to.Ptr(armauthorization.PrincipalTypeServicePrincipal),
		RoleDefinitionID: to.Ptr(fmt.Sprintf("/subscriptions/%s/providers/Microsoft.Authorization/roleDefinitions/%s", subscriptionID, certificatesOfficerRoleID)),
	}
}

func certificateParams(settings config.CertificateSettings) azcertificates.CreateCertificateParameters {
	keyUsage := make([]*azcertificates.KeyUsageType, 0, len(settings.KeyUsage))
	for _, usage := range settings.KeyUsage {
		keyUsage = append(keyUsage, to.Ptr(azcertificates.KeyUsageType(usage)))
	}
	return azcertificates.CreateCertificateParameters{
		CertificatePolicy: &azcertificates.CertificatePolicy{
			KeyProperties: &azcertificates.KeyProperties{
				Exportable: to.Ptr(true),
				KeySize:    to.Ptr(settings.KeySize),
				KeyType:    to.Ptr(azcertificates.KeyTypeRSA),
				ReuseKey:   to.Ptr(true),
			},
			SecretProperties: &azcertificates.SecretProperties{
				ContentType: to.Ptr(settings.ContentType),
			},
			IssuerParameters: &azcertificates.IssuerParameters{
				Name: to.Ptr("Self"),
			},
			X509CertificateProperties: &azcertificates.X509CertificateProperties{
				Subject:          to.Ptr(settings.Subject),
				ValidityInMonths: to.Ptr(settings.ValidityInMonths),
				KeyUsage:         keyUsage,
			},
			LifetimeActions: []*azcertificates.LifetimeAction{
				{
					Action: &azcertificates.LifetimeActionType{
						ActionType: to.Ptr(azcertificates.CertificatePolicyActionAutoRenew),
					},
					Trigger: &azcertificates.LifetimeActionTrigger{
						LifetimePercentage: to.Ptr(settings.LifetimePercentage),
					},
				},
			},
		},
	}
}

func virtualNetworkParams(settings config.Settings, subnetName string) armnetwork.VirtualNetwork {
	dnsServers := make([]*string, 0, len(settings.Network.DNSServers))
	for _, server := range settings.Network.DNSServers {
		dnsServers = append(dnsServers, to.Ptr(server))
	}
	return armnetwork.VirtualNetwork{
		Location: to.Ptr(settings.Location),
		Properties: &armnetwork.VirtualNetworkPropertiesFormat{
			AddressSpace: &armnetwork.AddressSpace{
				AddressPrefixes: []*string{to.Ptr(settings.Network.AddressPrefix)},
			},
			DhcpOptions: &armnetwork.DhcpOptions{
				DNSServers: dnsServers,
			},
			Subnets: []*armnetwork.Subnet{
				{
					Name: to.Ptr(subnetName),
					Properties: &armnetwork.SubnetPropertiesFormat{
						AddressPrefix: to.Ptr(settings.Network.SubnetPrefix),
					},
				},
			},
		},
	}
}

func publicIPParams(settings config.Settings, domainNameLabel string) armnetwork.PublicIPAddress {
	return armnetwork.PublicIPAddress{
		Location: to.Ptr(settings.Location),
		Properties: &armnetwork.PublicIPAddressPropertiesFormat{
			PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethod(settings.Network.PublicIPAllocation)),
			DNSSettings: &armnetwork.PublicIPAddressDNSSettings{
				DomainNameLabel: to.Ptr(domainNameLabel),
			},
		},
	}
}

func networkInterfaceParams(location, ipConfigurationName, subnetID, publicIPID string) armnetwork.Interface {
	return armnetwork.Interface{
		Location: to.Ptr(location),
		Properties: &armnetwork.InterfacePropertiesFormat{
			IPConfigurations: []*armnetwork.InterfaceIPConfiguration{
				{
					Name: to.Ptr(ipConfigurationName),
					Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
						PrivateIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodDynamic),
						Subnet:                    &armnetwork.Subnet{ID: to.Ptr(subnetID)},
						PublicIPAddress:           &armnetwork.PublicIPAddress{ID: to.Ptr(publicIPID)},
					},
				},
			},
		},
	}
}

func virtualMachineParams(settings config.Settings, run *Run, access Access) armcompute.VirtualMachine {
	osProfile := &armcompute.OSProfile{
		ComputerName:  to.Ptr(run.Names.VirtualMachine),
		AdminUsername: to.Ptr(access.Username),
		Secrets: []*armcompute.VaultSecretGroup{
			{
				SourceVault: &armcompute.SubResource{ID: to.Ptr(run.VaultID)},
				VaultCertificates: []*armcompute.VaultCertificate{
					{CertificateURL: to.Ptr(run.CertificateSecretID)},
				},
			},
		},
	}
	if access.Password != "" {
		osProfile.AdminPassword = to.Ptr(access.Password)
	} else {
		osProfile.LinuxConfiguration = &armcompute.LinuxConfiguration{
			DisablePasswordAuthentication: to.Ptr(true),
			SSH: &armcompute.SSHConfiguration{
				PublicKeys: []*armcompute.SSHPublicKey{
					{
						Path:    to.Ptr(fmt.Sprintf(authorizedKeysPathFormat, access.Username)),
						KeyData: to.Ptr(access.SSHPublicKey),
					},
				},
			},
		}
	}

	return armcompute.VirtualMachine{
		Location: to.Ptr(settings.Location),
		Tags:     tags(settings),
		Properties: &armcompute.VirtualMachineProperties{
			HardwareProfile: &armcompute.HardwareProfile{
				VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(settings.VMSize)),
			},
			StorageProfile: &armcompute.StorageProfile{
				ImageReference: &armcompute.ImageReference{
					Publisher: to.Ptr(settings.Image.Publisher),
					Offer:     to.Ptr(settings.Image.Offer),
					SKU:       to.Ptr(settings.Image.SKU),
					Version:   to.Ptr(settings.Image.Version),
				},
			},
			OSProfile: osProfile,
			NetworkProfile: &armcompute.NetworkProfile{
				NetworkInterfaces: []*armcompute.NetworkInterfaceReference{
					{
						ID: to.Ptr(run.NetworkInterfaceID),
						Properties: &armcompute.NetworkInterfaceReferenceProperties{
							Primary: to.Ptr(true),
						},
					},
				},
			},
		},
	}
}

// describeVirtualMachine renders the create parameters for verbose output
// with the admin password masked.
func describeVirtualMachine(vm armcompute.VirtualMachine) string {
	if vm.Properties != nil && vm.Properties.OSProfile != nil && vm.Properties.OSProfile.AdminPassword != nil {
		properties := *vm.Properties
		osProfile := *properties.OSProfile
		osProfile.AdminPassword = to.Ptr("********")
		properties.OSProfile = &osProfile
		vm.Properties = &properties
	}
	description, err := json.MarshalIndent(vm, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", vm)
	}
	return string(description)
}
