package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sysstats-project/sysstats-go/pkg/sensors"
	"github.com/sysstats-project/sysstats-go/pkg/transport"
)

const defaultAddress = "127.0.0.1:4712"

func newSensorsCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "sensors [path ...]",
		Short: "List the sensors of a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := transport.Dial(address)
			if err != nil {
				return err
			}
			defer client.Close()

			var infos map[string]sensors.SensorInfo
			if len(args) == 0 {
				infos, err = client.ListSensors()
			} else {
				infos, err = client.GetSensors(args)
			}
			if err != nil {
				return err
			}

			values := make(map[string]any)
			if len(args) > 0 {
				data, err := client.GetData(args)
				if err != nil {
					return err
				}
				for _, d := range data {
					values[d.Path] = d.Value
				}
			}

			paths := make([]string, 0, len(infos))
			for path := range infos {
				paths = append(paths, path)
			}
			sort.Strings(paths)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			for _, path := range paths {
				info := infos[path]
				line := fmt.Sprintf("%s\t%s\t%s", path, info.Name, info.Unit)
				if v, ok := values[path]; ok {
					line += fmt.Sprintf("\t%v", v)
				}
				fmt.Fprintln(w, line)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&address, "address", defaultAddress, "daemon address")
	return cmd
}

func newWatchCommand() *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "watch path [path ...]",
		Short: "Subscribe to sensors and print every change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := transport.Dial(address)
			if err != nil {
				return err
			}
			defer client.Close()

			// Initial values, the subscription only carries changes.
			initial, err := client.GetData(args)
			if err != nil {
				return err
			}
			for _, d := range initial {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", d.Path, d.Value)
			}

			if err := client.Subscribe(args); err != nil {
				return err
			}

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
			for {
				select {
				case frame, ok := <-client.Frames():
					if !ok {
						return fmt.Errorf("connection closed")
					}
					for _, d := range frame.Data {
						fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", d.Path, d.Value)
					}
				case <-signals:
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&address, "address", defaultAddress, "daemon address")
	return cmd
}
