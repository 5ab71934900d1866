package provision

import "fmt"

// Step names a state of a provisioning run. A run that completed a step
// resumes at the one after it.
type Step int

const (
	StepNone Step = iota
	StepLookup
	StepResourceGroup
	StepVault
	StepCertificate
	StepNetwork
	StepVirtualMachine
	StepConnectionInfo
	StepTeardown
)

var stepNames = map[Step]string{
	StepNone:           "none",
	StepLookup:         "lookup",
	StepResourceGroup:  "resource-group",
	StepVault:          "vault",
	StepCertificate:    "certificate",
	StepNetwork:        "network",
	StepVirtualMachine: "virtual-machine",
	StepConnectionInfo: "connection-info",
	StepTeardown:       "teardown",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

func (s Step) MarshalText() ([]byte, error) {
	if _, ok := stepNames[s]; !ok {
		return nil, fmt.Errorf("unknown step %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	for step, name := range stepNames {
		if name == string(text) {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", string(text))
}
