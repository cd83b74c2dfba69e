// Package wake
// Author: momentics <momentics@gmail.com>
//
// OS-backed cross-thread wake handles. Two physical variants share one
// contract: a counter-style eventfd handle on Linux and a byte-stream
// self-pipe handle on all Unix systems. The variant is fixed at construction
// time; the fire and drain paths never go through runtime backend dispatch
// beyond the single interface call.
package wake
