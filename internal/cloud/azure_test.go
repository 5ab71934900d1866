package cloud

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/authorization/armauthorization/v2"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCredential struct{}

func (staticCredential) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

type cannedResponse struct {
	status int
	body   string
}

type recordingTransport struct {
	responses []cannedResponse
	requests  []*http.Request
}

// Do answers with the canned responses in order and repeats the last one
// once they are used up.
func (t *recordingTransport) Do(req *http.Request) (*http.Response, error) {
	t.requests = append(t.requests, req)
	next := t.responses[0]
	if len(t.responses) > 1 {
		t.responses = t.responses[1:]
	}
	return &http.Response{
		StatusCode:    next.status,
		Status:        http.StatusText(next.status),
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(strings.NewReader(next.body)),
		ContentLength: int64(len(next.body)),
		Request:       req,
	}, nil
}

func (t *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.Do(req)
}

func newTestProvider(t *testing.T, responses ...cannedResponse) (*AzureProvider, *recordingTransport) {
	transport := &recordingTransport{responses: responses}
	p, err := newAzureProvider("sub", staticCredential{}, AzureOptions{
		Transport:              transport,
		GraphClient:            &http.Client{Transport: transport},
		Retry:                  policy.RetryOptions{MaxRetries: -1},
		RoleAssignmentTimeout:  time.Second,
		RoleAssignmentInterval: time.Millisecond,
	})
	require.NoError(t, err)
	return p, transport
}

func TestCreateResourceGroup(t *testing.T) {
	p, transport := newTestProvider(t, cannedResponse{http.StatusCreated,
		`{"id":"/subscriptions/sub/resourceGroups/testrg0001","name":"testrg0001","location":"eastus","properties":{"provisioningState":"Succeeded"}}`})

	group, err := p.CreateResourceGroup(context.Background(), "testrg0001", armresources.ResourceGroup{
		Location: to.Ptr("eastus"),
	})
	require.NoError(t, err)

	assert.Equal(t, "testrg0001", *group.Name)
	assert.Equal(t, "Succeeded", *group.Properties.ProvisioningState)
	require.Len(t, transport.requests, 1)
	assert.Equal(t, http.MethodPut, transport.requests[0].Method)
	assert.Contains(t, transport.requests[0].URL.Path, "/subscriptions/sub/resourcegroups/testrg0001")
}

func TestGetPublicIPNotFound(t *testing.T) {
	p, _ := newTestProvider(t, cannedResponse{http.StatusNotFound,
		`{"error":{"code":"ResourceNotFound","message":"not found"}}`})

	_, err := p.GetPublicIP(context.Background(), "testrg0001", "testpip0001")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsTransient(err))
}

func TestGetSubnet(t *testing.T) {
	p, transport := newTestProvider(t, cannedResponse{http.StatusOK,
		`{"id":"/subscriptions/sub/resourceGroups/testrg0001/providers/Microsoft.Network/virtualNetworks/testvnet0001/subnets/testsubnet0001","name":"testsubnet0001","properties":{"addressPrefix":"10.0.0.0/24","provisioningState":"Succeeded"}}`})

	subnet, err := p.GetSubnet(context.Background(), "testrg0001", "testvnet0001", "testsubnet0001")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.0/24", *subnet.Properties.AddressPrefix)
	assert.Equal(t, http.MethodGet, transport.requests[0].Method)
	assert.Contains(t, transport.requests[0].URL.Path, "/virtualNetworks/testvnet0001/subnets/testsubnet0001")
}

func TestResolveObjectID(t *testing.T) {
	var tests = []struct {
		name     string
		body     string
		expected string
		err      error
	}{
		{"found", `{"value":[{"id":"0f8fad5b-d9cb-469f-a165-70867728950e","appId":"7c9e6679-7425-40de-944b-e07fc1f90ae7","displayName":"wizard"}]}`, "0f8fad5b-d9cb-469f-a165-70867728950e", nil},
		{"no service principal", `{"value":[]}`, "", ErrServicePrincipalNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, transport := newTestProvider(t, cannedResponse{http.StatusOK, tc.body})

			objectID, err := p.ResolveObjectID(context.Background(), "7c9e6679-7425-40de-944b-e07fc1f90ae7")
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.ErrorContains(t, err, "7c9e6679-7425-40de-944b-e07fc1f90ae7")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, objectID)
			}

			require.Len(t, transport.requests, 1)
			req := transport.requests[0]
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "graph.microsoft.com", req.URL.Host)
			assert.Equal(t, "/v1.0/servicePrincipals", req.URL.Path)
			assert.Equal(t, "appId eq '7c9e6679-7425-40de-944b-e07fc1f90ae7'", req.URL.Query().Get("$filter"))
			assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
		})
	}
}

func TestServicePrincipalFilterEscapesQuotes(t *testing.T) {
	assert.Equal(t, "appId eq 'app'", servicePrincipalFilter("app"))
	assert.Equal(t, "appId eq 'x'' or appId ne ''x'", servicePrincipalFilter("x' or appId ne 'x"))
}

func testRoleAssignment() armauthorization.RoleAssignmentProperties {
	return armauthorization.RoleAssignmentProperties{
		PrincipalID:      to.Ptr("0f8fad5b-d9cb-469f-a165-70867728950e"),
		RoleDefinitionID: to.Ptr("/subscriptions/sub/providers/Microsoft.Authorization/roleDefinitions/a4417e6f-fecd-4de8-b567-7b0420556985"),
	}
}

const testVaultScope = "subscriptions/sub/resourceGroups/testrg0001/providers/Microsoft.KeyVault/vaults/testkv0001"

func TestAssignRole(t *testing.T) {
	created := cannedResponse{http.StatusCreated,
		`{"id":"/x/providers/Microsoft.Authorization/roleAssignments/ra","name":"ra","properties":{"principalId":"0f8fad5b-d9cb-469f-a165-70867728950e"}}`}
	notPropagated := cannedResponse{http.StatusBadRequest,
		`{"error":{"code":"PrincipalNotFound","message":"Principal does not exist in the directory."}}`}
	exists := cannedResponse{http.StatusConflict,
		`{"error":{"code":"RoleAssignmentExists","message":"The role assignment already exists."}}`}

	var tests = []struct {
		name      string
		responses []cannedResponse
		requests  int
	}{
		{"created", []cannedResponse{created}, 1},
		{"already exists", []cannedResponse{exists}, 1},
		{"created after propagation", []cannedResponse{notPropagated, notPropagated, created}, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, transport := newTestProvider(t, tc.responses...)

			require.NoError(t, p.AssignRole(context.Background(), testVaultScope, testRoleAssignment()))

			require.Len(t, transport.requests, tc.requests)
			for _, req := range transport.requests {
				assert.Equal(t, http.MethodPut, req.Method)
				assert.Contains(t, req.URL.Path, testVaultScope+"/providers/Microsoft.Authorization/roleAssignments/")
			}
		})
	}
}

func TestAssignRoleRetryTimeout(t *testing.T) {
	p, transport := newTestProvider(t, cannedResponse{http.StatusBadRequest,
		`{"error":{"code":"PrincipalNotFound","message":"Principal does not exist in the directory."}}`})
	p.roleAssignmentTimeout = 20 * time.Millisecond

	err := p.AssignRole(context.Background(), testVaultScope, testRoleAssignment())
	require.Error(t, err)
	assert.ErrorContains(t, err, "retry timeout exceeded")

	var respErr *azcore.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, "PrincipalNotFound", respErr.ErrorCode)
	assert.Greater(t, len(transport.requests), 1)
}

func TestAssignRoleCancelled(t *testing.T) {
	p, _ := newTestProvider(t, cannedResponse{http.StatusBadRequest,
		`{"error":{"code":"PrincipalNotFound","message":"Principal does not exist in the directory."}}`})
	p.roleAssignmentInterval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	err := p.AssignRole(ctx, testVaultScope, testRoleAssignment())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCaller(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"appid": "app",
		"oid":   "object",
		"tid":   "tenant",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	caller, err := parseCaller(token)
	require.NoError(t, err)
	assert.Equal(t, Caller{ApplicationID: "app", ObjectID: "object", TenantID: "tenant"}, caller)

	_, err = parseCaller("not-a-token")
	assert.Error(t, err)
}
