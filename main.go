package main

import (
	"launcher-core/cmd"
	"launcher-core/logger"

	_ "go.uber.org/automaxprocs/maxprocs"
)

func main() {
	defer logger.Sync() // Ensure logs are flushed on exit
	cmd.Execute()
}
