//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub factory for platforms without an epoll/kqueue style engine.

package reactor

import "github.com/momentics/pollwake/api"

// New reports that no reactor implementation exists for this platform.
func New() (Reactor, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "reactor: no implementation for this platform")
}
