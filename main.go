// main is the entry point for the pulse CLI.
package main

import (
	"github.com/huangsam/pulse/cmd"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/iocache"
)

func main() {
	err := cmd.Execute()

	iocache.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Cannot stop profiling", stopErr)
	}

	if err != nil {
		contract.LogFatal("Cannot run command", err)
	}
}
