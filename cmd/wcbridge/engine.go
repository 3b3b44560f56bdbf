package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/thesyncim/wcbridge/remote"
)

func newEngineCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Engine capability service",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve an in-process engine to remote clients over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.engine()
			if err != nil {
				return err
			}
			mux := http.NewServeMux()
			mux.Handle(a.v.GetString("engine.path"), remote.NewServer(e, a.log))

			ln, err := net.Listen("tcp", a.v.GetString("engine.listen"))
			if err != nil {
				return err
			}
			srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					a.log.WithError(err).Warn("engine service shutdown")
				}
			}()

			a.log.WithField("addr", ln.Addr().String()).Info("engine service listening")
			if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	f := serve.Flags()
	f.String("listen", "127.0.0.1:8089", "listen address")
	f.String("path", "/engine", "websocket path")
	mustBind(a.v, "engine.listen", f.Lookup("listen"))
	mustBind(a.v, "engine.path", f.Lookup("path"))

	cmd.AddCommand(serve)
	return cmd
}
