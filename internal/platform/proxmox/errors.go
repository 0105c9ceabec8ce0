package proxmox

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
)

// ConnectivityError marks a host-level transport failure: the Proxmox API
// endpoint or one of its cluster host nodes could not be reached. Discovery
// treats these as recoverable per host; the affected host simply
// contributes no VMs.
type ConnectivityError struct {
	Host string
	Err  error
}

func (e *ConnectivityError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("host %s unreachable: %v", e.Host, e.Err)
	}
	return fmt.Sprintf("proxmox api unreachable: %v", e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsConnectivity checks whether an error is a connectivity-class failure.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}

// isTransportError classifies errors from the underlying HTTP client that
// indicate the remote side could not be reached, as opposed to an API-level
// rejection of a well-delivered request.
func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
