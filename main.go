// File: main.go
package main

import (
	"fmt"
	"os"

	"secret.module/cmd"
	"secret.module/internal/errors"
	"secret.module/internal/shutdown"
)

func main() {
	shutdownManager := shutdown.GetManager()

	// Execute the root command and check for errors.
	err := cmd.Execute()
	if err != nil {
		errors.Handle(err)
		fmt.Fprintln(os.Stderr, "Error:", errors.FormatForUser(err))
	}

	// Destroy secrets still alive and clear the clipboard before exit
	if !shutdownManager.IsShutdown() {
		shutdownManager.Shutdown()
	}
	if err != nil {
		os.Exit(1)
	}
}
