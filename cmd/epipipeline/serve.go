package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dsih-artpark/epipipeline-v2/internal/metrics"
	"github.com/dsih-artpark/epipipeline-v2/internal/standardise"
	"github.com/dsih-artpark/epipipeline-v2/internal/web"
)

func createServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the standardisation API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if port > 0 {
				a.settings.Server.Port = port
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			std, err := a.newStandardiser(ctx, standardise.Observers{m, standardise.LogObserver{Logger: a.logger}})
			if err != nil {
				return err
			}

			return web.NewServer(a.settings.Server, std, m, reg, a.logger).Start(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides settings)")
	return cmd
}
