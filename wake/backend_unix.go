//go:build darwin || freebsd || netbsd || openbsd || dragonfly

// File: wake/backend_unix.go
// Author: momentics <momentics@gmail.com>
//
// Backend selection for non-Linux Unix: the self-pipe is the only variant.

package wake

import "github.com/momentics/pollwake/api"

func newBackend(b Backend) (Handle, error) {
	switch b {
	case BackendAuto, BackendPipe:
		return newPipe()
	case BackendEventFD:
		return nil, api.NewError(api.ErrCodeNotSupported, "wake: eventfd backend requires Linux")
	default:
		return nil, api.NewError(api.ErrCodeNotSupported, "wake: unknown backend").
			WithContext("backend", int(b))
	}
}
