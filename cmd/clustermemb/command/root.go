// Package command wires the clustermemb CLI: "simulate" runs a cluster
// entirely in-memory over netsim.Emulator, "serve" runs exactly one
// real node over wiretransport, a WallClock, the status HTTP surface,
// and Prometheus metrics.
package command

import "github.com/spf13/cobra"

// NewRootCommand builds the top-level clustermemb command.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "clustermemb",
		Short: "Gossip-style cluster membership protocol",
		Long: `clustermemb runs a gossip-style cluster membership protocol: nodes
exchange heartbeats and anti-entropy digests to converge on a shared view of
who is alive, and prune peers that go silent for too long.`,
	}

	root.AddCommand(newSimulateCommand())
	root.AddCommand(newServeCommand())
	return root
}
