package command

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcastellin/clustermemb/internal/membership"
	"github.com/mcastellin/clustermemb/internal/netsim"
)

func newSimulateCommand() *cobra.Command {
	var (
		regularNodes int
		dropProb     float64
		jitterTicks  int
		runTicks     int
		killAtTick   int
		reviveAtTick int
		killNodeID   uint32
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "run a cluster entirely in-memory over a discrete-time network emulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(simulateOptions{
				regularNodes: regularNodes,
				dropProb:     dropProb,
				jitterTicks:  jitterTicks,
				runTicks:     runTicks,
				killAtTick:   killAtTick,
				reviveAtTick: reviveAtTick,
				killNodeID:   killNodeID,
			})
		},
	}

	cmd.Flags().IntVar(&regularNodes, "nodes", 4, "Number of regular (non-introducer) nodes to boot.")
	cmd.Flags().Float64Var(&dropProb, "drop-probability", 0, "Fraction of sent frames silently dropped.")
	cmd.Flags().IntVar(&jitterTicks, "jitter-ticks", 0, "Max extra ticks a delivered frame may be delayed by.")
	cmd.Flags().IntVar(&runTicks, "run-ticks", 60, "Total number of ticks to run the simulation for.")
	cmd.Flags().IntVar(&killAtTick, "kill-at-tick", 0, "If > 0, tick at which --kill-node is killed.")
	cmd.Flags().IntVar(&reviveAtTick, "revive-at-tick", 0, "If > 0, tick at which --kill-node is revived.")
	cmd.Flags().Uint32Var(&killNodeID, "kill-node", 0, "Node id to kill/revive at the configured ticks.")

	return cmd
}

type simulateOptions struct {
	regularNodes int
	dropProb     float64
	jitterTicks  int
	runTicks     int
	killAtTick   int
	reviveAtTick int
	killNodeID   uint32
}

func runSimulate(opts simulateOptions) error {
	e := netsim.NewEmulator(
		netsim.WithDropProbability(opts.dropProb),
		netsim.WithJitter(opts.jitterTicks),
	)

	introducer := membership.NewNode(
		membership.Introducer, membership.DefaultProtocol(), e, e.Clock(),
		membership.NopLog{}, membership.NopMetrics{},
	)
	e.Register(introducer)
	if err := introducer.Start(membership.Introducer); err != nil {
		return fmt.Errorf("simulate: start introducer: %w", err)
	}
	fmt.Fprintln(os.Stdout, "started introducer", membership.Introducer)

	nodes := make([]*membership.Node, 0, opts.regularNodes)
	for i := 0; i < opts.regularNodes; i++ {
		addr := membership.Address{ID: uint32(i + 2), Port: 0}
		n := membership.NewNode(addr, membership.DefaultProtocol(), e, e.Clock(), membership.NopLog{}, membership.NopMetrics{})
		e.Register(n)
		if err := n.Start(membership.Introducer); err != nil {
			return fmt.Errorf("simulate: start node %s: %w", addr, err)
		}
		nodes = append(nodes, n)
		fmt.Fprintln(os.Stdout, "started node", addr)
	}

	killAddr := membership.Address{ID: opts.killNodeID, Port: 0}
	for tick := 1; tick <= opts.runTicks; tick++ {
		e.Tick()

		if opts.killAtTick > 0 && tick == opts.killAtTick {
			fmt.Fprintln(os.Stdout, "*** killing", killAddr, "at tick", tick)
			e.Kill(killAddr)
		}
		if opts.reviveAtTick > 0 && tick == opts.reviveAtTick {
			fmt.Fprintln(os.Stdout, "*** reviving", killAddr, "at tick", tick)
			if err := e.Revive(killAddr, membership.Introducer); err != nil {
				return fmt.Errorf("simulate: revive %s: %w", killAddr, err)
			}
		}

		if tick%10 == 0 {
			fmt.Fprintf(os.Stdout, "tick %d: introducer table size=%d\n", tick, introducer.Table().Len())
			for _, n := range nodes {
				if n.Failed() {
					continue
				}
				fmt.Fprintf(os.Stdout, "  node %s table size=%d\n", n.Addr(), n.Table().Len())
			}
		}
	}

	return nil
}
