package cloud

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/golang-jwt/jwt/v5"
)

type Caller struct {
	ApplicationID string
	ObjectID      string
	TenantID      string
}

// Caller reads the identity of the authenticated principal from its
// management plane token. The token is trusted as issued by the credential
// and is not verified.
func (p *AzureProvider) Caller(ctx context.Context) (Caller, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{"https://management.azure.com/.default"},
	})
	if err != nil {
		return Caller{}, fmt.Errorf("failed to get management token, %w", err)
	}
	return parseCaller(token.Token)
}

func parseCaller(token string) (Caller, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Caller{}, fmt.Errorf("failed to parse management token, %w", err)
	}
	claim := func(name string) string {
		if v, ok := claims[name].(string); ok {
			return v
		}
		return ""
	}
	return Caller{
		ApplicationID: claim("appid"),
		ObjectID:      claim("oid"),
		TenantID:      claim("tid"),
	}, nil
}

func (p *AzureProvider) Subscription(ctx context.Context) (armsubscriptions.Subscription, error) {
	resp, err := p.subscriptions.Get(ctx, p.subscriptionID, nil)
	if err != nil {
		return armsubscriptions.Subscription{}, fmt.Errorf("failed to get subscription %s, %w", p.subscriptionID, err)
	}
	return resp.Subscription, nil
}
