package main

import (
	"fmt"
	"os"

	"github.com/soyeahso/agentdesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "agentdesk:", err)
		os.Exit(1)
	}
}
