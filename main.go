package main

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/simledger/cmd"
	"github.com/mezonai/simledger/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("SIMLEDGER CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
