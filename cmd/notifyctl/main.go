package main

import (
	"fmt"
	"os"

	"notify_relay/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "notifyctl: %v\n", err)
		os.Exit(2)
	}
}
