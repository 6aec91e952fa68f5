// Package goid exposes the current goroutine's ID.
//
// The runtime deliberately offers no accessor, so the ID is parsed out
// of the runtime.Stack header ("goroutine N [running]: ..."), whose
// format has been stable since Go 1.0. The IDs are used only to answer
// "am I on that goroutine?" questions for fail-fast deadlock checks
// and reentrancy tracking, never for scheduling decisions.
package goid

import "runtime"

// ID returns the calling goroutine's ID.
func ID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] < '0' || buf[i] > '9' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}
