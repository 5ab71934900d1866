package names

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// suffixSpace bounds the random numeric suffix: names are prefix + [0, suffixSpace).
const suffixSpace = 10000

var ErrNamesExhausted = errors.New("no unused name left for prefix")

// Generator hands out prefix+number names that are unique within the
// generator. Uniqueness is process-local only: names may still collide with
// resources that already exist in the cloud account.
type Generator struct {
	seen map[string]struct{}
	intN func(n int) int
}

// NewGenerator returns a generator that never returns any of existing.
func NewGenerator(existing ...string) *Generator {
	g := &Generator{
		seen: make(map[string]struct{}, len(existing)),
		intN: rand.IntN,
	}
	for _, name := range existing {
		g.seen[name] = struct{}{}
	}
	return g
}

// Generate returns a fresh name for prefix and records it.
func (g *Generator) Generate(prefix string) (string, error) {
	for attempt := 0; attempt < suffixSpace; attempt++ {
		candidate := fmt.Sprintf("%s%d", prefix, g.intN(suffixSpace))
		if _, ok := g.seen[candidate]; !ok {
			g.seen[candidate] = struct{}{}
			return candidate, nil
		}
	}
	// Random probing keeps missing; fall back to the first free suffix.
	for n := 0; n < suffixSpace; n++ {
		candidate := fmt.Sprintf("%s%d", prefix, n)
		if _, ok := g.seen[candidate]; !ok {
			g.seen[candidate] = struct{}{}
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrNamesExhausted, prefix)
}

// Resources holds the generated name of every resource a run creates.
type Resources struct {
	ResourceGroup    string `json:"resourceGroup"`
	VirtualMachine   string `json:"virtualMachine"`
	VirtualNetwork   string `json:"virtualNetwork"`
	Subnet           string `json:"subnet"`
	PublicIP         string `json:"publicIP"`
	NetworkInterface string `json:"networkInterface"`
	IPConfiguration  string `json:"ipConfiguration"`
	DomainNameLabel  string `json:"domainNameLabel"`
	KeyVault         string `json:"keyVault"`
	Certificate      string `json:"certificate"`
}

// NewResources generates every resource name of a run from g.
func NewResources(g *Generator) (Resources, error) {
	var r Resources
	for _, field := range []struct {
		prefix string
		target *string
	}{
		{"testrg", &r.ResourceGroup},
		{"testvm", &r.VirtualMachine},
		{"testvnet", &r.VirtualNetwork},
		{"testsubnet", &r.Subnet},
		{"testpip", &r.PublicIP},
		{"testnic", &r.NetworkInterface},
		{"testcrpip", &r.IPConfiguration},
		{"testdomainname", &r.DomainNameLabel},
		{"testkv", &r.KeyVault},
		{"testcert", &r.Certificate},
	} {
		name, err := g.Generate(field.prefix)
		if err != nil {
			return Resources{}, err
		}
		*field.target = name
	}
	return r, nil
}
