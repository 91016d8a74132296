// Command sysstatsd collects system statistics and serves them to
// subscribers over TCP.
//
// Usage:
//
//	sysstatsd run [--config path] [--listen addr] [--foreground-log]
//	sysstatsd sensors [--address addr] [path ...]
//	sysstatsd watch --address addr path [path ...]
//
// The run command starts the daemon: it polls the enabled providers on
// a fixed interval, serves sensor metadata and values on the configured
// TCP address and announces itself over mDNS. The sensors command lists
// the sensors of a running daemon, watch subscribes to a set of sensor
// paths and prints every change as it arrives.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "sysstatsd",
		Short:         "System statistics daemon",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCommand())
	root.AddCommand(newSensorsCommand())
	root.AddCommand(newWatchCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
