//go:build linux

// File: wake/backend_linux.go
// Author: momentics <momentics@gmail.com>
//
// Backend selection for Linux: eventfd by default, self-pipe on request.

package wake

import "github.com/momentics/pollwake/api"

func newBackend(b Backend) (Handle, error) {
	switch b {
	case BackendAuto, BackendEventFD:
		return newEventFD()
	case BackendPipe:
		return newPipe()
	default:
		return nil, api.NewError(api.ErrCodeNotSupported, "wake: unknown backend").
			WithContext("backend", int(b))
	}
}
