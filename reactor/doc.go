// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness polling engine abstraction and
// cross-platform implementations for epoll (Linux) and kqueue (BSD/darwin).
package reactor
