package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/loykin/restclient/internal/server"
	"github.com/loykin/restclient/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /execute over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.openStore(ctx, v.GetBool("no_store"))
			if err != nil {
				return err
			}
			p, err := a.doc.NewPlugin(a.pluginOptions()...)
			if err != nil {
				return err
			}

			s := server.New(p, server.Options{
				RateLimit: a.doc.Server.RateLimit,
				Burst:     a.doc.Server.Burst,
				Store:     st,
				Logger:    a.logger,
			})
			addr := util.TrimWithDefault(v.GetString("addr"), a.doc.Server.Addr)
			return s.Run(ctx, addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}
