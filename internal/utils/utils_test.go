package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicIPv4(t *testing.T) {
	var tests = []struct {
		address  string
		expected bool
	}{
		{"20.120.4.8", true},
		{"10.0.0.4", false},
		{"127.0.0.1", false},
		{"0.0.0.0", false},
		{"::1", false},
		{"2001:db8::1", false},
		{"", false},
		{"not-an-ip", false},
	}

	for _, tc := range tests {
		t.Run(tc.address, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsPublicIPv4(tc.address))
		})
	}
}

func TestSleepReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

type state string

func TestDeRef(t *testing.T) {
	value := "value"
	assert.Equal(t, "fallback", DeRefOr(nil, "fallback"))
	assert.Equal(t, "value", DeRefOr(&value, "fallback"))

	succeeded := state("Succeeded")
	assert.Equal(t, "Succeeded", String(&succeeded))
	assert.Equal(t, "", String[state](nil))
}
