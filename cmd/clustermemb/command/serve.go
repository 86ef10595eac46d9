package command

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/mcastellin/clustermemb/internal/clock"
	cmembconfig "github.com/mcastellin/clustermemb/internal/config"
	"github.com/mcastellin/clustermemb/internal/logsink"
	"github.com/mcastellin/clustermemb/internal/membership"
	"github.com/mcastellin/clustermemb/internal/metrics"
	"github.com/mcastellin/clustermemb/internal/status"
	"github.com/mcastellin/clustermemb/internal/wiretransport"
)

func newServeCommand() *cobra.Command {
	conf := cmembconfig.Default()
	var (
		configPath string
		selfID     uint32
		selfPort   uint16
		peers      []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run exactly one real node over TCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				// Reapply the flags given on the command line over the file,
				// so flags win over YAML and YAML over the defaults.
				explicit := map[string]string{}
				cmd.Flags().Visit(func(f *pflag.Flag) { explicit[f.Name] = f.Value.String() })
				if err := cmembconfig.LoadYAML(conf, configPath); err != nil {
					return err
				}
				confFlags := pflag.NewFlagSet("config", pflag.ContinueOnError)
				conf.RegisterFlags(confFlags)
				for name, value := range explicit {
					if confFlags.Lookup(name) != nil {
						if err := confFlags.Set(name, value); err != nil {
							return fmt.Errorf("reapply --%s: %w", name, err)
						}
					}
				}
			}
			if err := conf.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			return runServe(conf, membership.Address{ID: selfID, Port: selfPort}, peers)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Optional YAML file overriding defaults before flags are applied.")
	cmd.Flags().Uint32Var(&selfID, "self.id", 0, "This node's id.")
	cmd.Flags().Uint16Var(&selfPort, "self.port", 0, "This node's port field (not the TCP bind port).")
	cmd.Flags().StringSliceVar(&peers, "peer", nil,
		"Known peer in 'id:port=host:tcpport' form; repeatable. The introducer (id=1,port=0) must be included unless this node is the introducer.")
	conf.RegisterFlags(cmd.Flags())

	return cmd
}

func runServe(conf *cmembconfig.Config, self membership.Address, rawPeers []string) error {
	log, err := logsink.New(conf.EventsLogPath, conf.DebugLogPath)
	if err != nil {
		return fmt.Errorf("serve: build logger: %w", err)
	}
	defer log.Sync()

	book, err := parsePeerBook(rawPeers)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	transport := wiretransport.NewTransport(book, log)

	protocol := membership.Protocol{TFail: conf.TFail, TRemove: conf.TRemove, TGossip: conf.TGossip}
	wallClock := clock.NewWallClock(mustParseDuration(conf.TickInterval))
	node := membership.NewNode(self, protocol, transport, wallClock, log, recorder)

	// nodeMu serializes Deliver (listener goroutines), Tick and Stop.
	var nodeMu sync.Mutex
	ln, err := wiretransport.Listen(conf.BindAddr, func(frame []byte) {
		nodeMu.Lock()
		defer nodeMu.Unlock()
		node.Deliver(frame)
	})
	if err != nil {
		return fmt.Errorf("serve: listen: %w", err)
	}
	defer ln.Close()

	introducerAddr := membership.Address{ID: conf.IntroducerID, Port: conf.IntroducerPort}
	if err := node.Start(introducerAddr); err != nil {
		return fmt.Errorf("serve: start: %w", err)
	}

	statusServer := status.NewServer(status.NewMembers(node.Table()), promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	statusLn, err := net.Listen("tcp", conf.StatusAddr)
	if err != nil {
		return fmt.Errorf("serve: status listen: %w", err)
	}
	defer statusLn.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ln.Serve(); err != nil {
			return fmt.Errorf("wiretransport serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := statusServer.Serve(statusLn); err != nil {
			return fmt.Errorf("status serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		stop := make(chan struct{})
		go func() {
			<-ctx.Done()
			close(stop)
		}()
		wallClock.Run(stop, func() {
			nodeMu.Lock()
			defer nodeMu.Unlock()
			node.Tick()
		})
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.LogDebug(self, "shutdown signal received, stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ln.Close()
		if err := statusServer.Shutdown(shutdownCtx); err != nil {
			log.LogDebug(self, "status server shutdown error: %v", err)
		}
		nodeMu.Lock()
		node.Stop()
		nodeMu.Unlock()
		return nil
	})

	return g.Wait()
}

func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}

func parsePeerBook(rawPeers []string) (*wiretransport.AddrBook, error) {
	seed := map[membership.Address]string{}
	for _, raw := range rawPeers {
		addr, endpoint, err := parsePeerSpec(raw)
		if err != nil {
			return nil, err
		}
		seed[addr] = endpoint
	}
	return wiretransport.NewAddrBook(seed), nil
}

// parsePeerSpec parses "id:port=host:tcpport" into a membership.Address
// and its dial endpoint.
func parsePeerSpec(raw string) (membership.Address, string, error) {
	var id uint32
	var port uint16
	var endpoint string
	_, err := fmt.Sscanf(raw, "%d:%d=%s", &id, &port, &endpoint)
	if err != nil {
		return membership.Address{}, "", fmt.Errorf("invalid --peer %q: %w", raw, err)
	}
	return membership.Address{ID: id, Port: port}, endpoint, nil
}
