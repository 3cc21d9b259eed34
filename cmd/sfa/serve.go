package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/komsit37/sfa/pkg/sfa/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve fundamentals, screening and CSV export over HTTP",
	Example: "  sfa serve --addr :8080\n" +
		"  curl 'localhost:8080/api/screen?symbols=AAPL,MSFT&min_roe=20'",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := &cur
		log := a.log.With().Str("component", "server").Logger()
		srv := server.New(a.runner, a.cfg.Policy, a.cfg.Criteria, a.cfg.ScreenOn, log)
		hs := &http.Server{
			Addr:              a.cfg.Addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- hs.ListenAndServe() }()
		log.Info().Str("addr", a.cfg.Addr).Msg("listening")

		select {
		case <-cmd.Context().Done():
			log.Info().Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(ctx)
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
}
