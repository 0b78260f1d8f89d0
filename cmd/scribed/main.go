package main

import (
	"fmt"
	"os"

	"scribed/cmd/scribed/cmd"
	"scribed/internal/config"
)

func main() {
	cfg, err := config.InitializeConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	cmd.Execute(cfg)
}
