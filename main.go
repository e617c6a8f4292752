package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	a := NewApp(cfg, NewLogger(cfg.LogLevel), os.Stdin, os.Stdout)
	os.Exit(run(a, os.Args[1:], os.Stderr))
}

// run executes one command line and returns the process exit code.
// Rejected or unknown input prints the usage text and still exits 0;
// only failures of the tool itself exit 1.
func run(a *App, args []string, stderr io.Writer) int {
	defer a.Close()

	rootCmd := SetupCommands(a)
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)

	cmd, err := rootCmd.ExecuteC()
	if err == nil {
		return 0
	}

	if errors.Is(err, errUsage) {
		a.log.Debug("rejected command line", "args", args, "error", err)
		fmt.Fprintln(a.out, "Invalid command or arguments.")
		fmt.Fprint(a.out, cmd.UsageString())
		return 0
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
