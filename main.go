// Package main is the entry point of the flowcast CLI.
package main

import (
	"os"

	"github.com/huangsam/flowcast/cmd"
	"github.com/huangsam/flowcast/internal/contract"
	"github.com/huangsam/flowcast/internal/iocache"
)

func main() {
	err := cmd.Execute()

	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Cannot stop profiling", perr)
	}
	iocache.CloseStores()

	if err != nil {
		contract.Logger().Error().Err(err).Msg("flowcast failed")
		os.Exit(1)
	}
}
