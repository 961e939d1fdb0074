package exception

import (
	"runtime/debug"

	"github.com/mezonai/simledger/logx"
	"github.com/mezonai/simledger/monitoring"
)

// SafeGo runs fn in a goroutine and logs any panic instead of crashing the process
func SafeGo(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}

// Recover must be deferred directly
func Recover(name string) {
	if r := recover(); r != nil {
		monitoring.IncreasePanicCount()
		logx.Error("PANIC", "Panic in: ", name, " ", r, string(debug.Stack()))
	}
}
