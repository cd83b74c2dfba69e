//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

// File: wake/backend_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without a descriptor-based wake primitive.

package wake

import "github.com/momentics/pollwake/api"

func newBackend(Backend) (Handle, error) {
	return nil, api.NewError(api.ErrCodeNotSupported, "wake: no backend for this platform")
}
