package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/askiada/netsec-pipeline/internal/logging"
	"github.com/askiada/netsec-pipeline/internal/server"
	"github.com/askiada/netsec-pipeline/internal/trainpipe"
	"github.com/askiada/netsec-pipeline/pkg/pipeline/measure"
)

const shutdownTimeout = 10 * time.Second

var serveFlags struct {
	addr string
	file string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve training and prediction over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		durations := measure.NewStageHistogram("netsec")
		reg.MustRegister(durations)

		runner, err := newRunner(cfg, serveFlags.file, trainpipe.WithStageDurations(durations))
		if err != nil {
			return err
		}

		srv, err := server.New(server.Config{
			ModelPath:           finalModelPath(cfg),
			PredictionOutputDir: cfg.PredictionOutputDir,
			ArtifactRoot:        cfg.ArtifactRoot,
		}, runner.Run, reg)
		if err != nil {
			return err
		}

		addr := cfg.HTTPAddr
		if serveFlags.addr != "" {
			addr = serveFlags.addr
		}
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		logger := logging.New("serve")
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("listening", "addr", addr)
			err := httpServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "http server stopped")
			}

			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return errors.Wrap(httpServer.Shutdown(shutdownCtx), "unable to shut down http server")
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address, overrides HTTP_ADDR")
	serveCmd.Flags().StringVar(&serveFlags.file, "file", "", "Train from this CSV file instead of the document store")
}
