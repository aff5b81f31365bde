package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"cryptopilot/internal/cli"
	"cryptopilot/internal/config"
	"cryptopilot/internal/logging"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	configDir := configDirFromArgs(os.Args[1:])

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cryptopilot: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "cryptopilot: %v\n", err)
		os.Exit(1)
	}
}

// configDirFromArgs resolves the --config flag ahead of cobra so the
// configuration is available while commands are being wired.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if len(arg) > len("--config=") && arg[:len("--config=")] == "--config=" {
			return arg[len("--config="):]
		}
	}
	return os.Getenv("CRYPTOPILOT_CONFIG")
}
