package main

import (
	"fmt"
	"os"

	"modpack-server-installer/cmd"
	"modpack-server-installer/logger"

	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := logger.InitLogger(logger.DefaultLogFile); err != nil {
		fmt.Fprintf(os.Stderr, "%v, logging to console only\n", err)
		_ = logger.InitLogger("")
	}
	code := cmd.Execute()
	logger.Sync() // os.Exit skips deferred calls
	os.Exit(code)
}
