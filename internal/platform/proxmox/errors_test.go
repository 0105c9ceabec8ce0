package proxmox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"testing"
)

func TestIsConnectivity(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: false,
		},
		{
			name:     "connectivity error",
			err:      &ConnectivityError{Host: "pve2", Err: errors.New("connection refused")},
			expected: true,
		},
		{
			name:     "wrapped connectivity error",
			err:      fmt.Errorf("listing vms: %w", &ConnectivityError{Host: "pve2", Err: errors.New("timeout")}),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConnectivity(tt.err); got != tt.expected {
				t.Errorf("IsConnectivity(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "api rejection",
			err:      errors.New("401 Unauthorized"),
			expected: false,
		},
		{
			name:     "url error",
			err:      &url.Error{Op: "Get", URL: "https://pve:8006", Err: errors.New("connection refused")},
			expected: true,
		},
		{
			name:     "eof",
			err:      io.EOF,
			expected: true,
		},
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransportError(tt.err); got != tt.expected {
				t.Errorf("isTransportError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestConnectivityErrorMessage(t *testing.T) {
	withHost := &ConnectivityError{Host: "pve3", Err: errors.New("no route to host")}
	if got := withHost.Error(); got != "host pve3 unreachable: no route to host" {
		t.Errorf("unexpected message: %q", got)
	}

	withoutHost := &ConnectivityError{Err: errors.New("dial tcp: timeout")}
	if got := withoutHost.Error(); got != "proxmox api unreachable: dial tcp: timeout" {
		t.Errorf("unexpected message: %q", got)
	}
}
