package main

import (
	"fmt"

	"github.com/loykin/restclient"
	"github.com/loykin/restclient/internal/errs"
	"github.com/loykin/restclient/internal/fetch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newValidateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the plugin configuration without sending a request",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			cfg, err := restclient.ValidateConfig(a.doc.Plugin)
			if err != nil {
				return err
			}
			if !fetch.Supported(cfg.Method) {
				return errs.UnsupportedMethod(cfg.Method)
			}
			if _, err := a.doc.Client.ToHttpc(); err != nil {
				return err
			}
			name := restclient.OutputName(cfg.Output, a.doc.Mapping)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "config is valid: %s %s -> %s\n", cfg.Method, cfg.URL, name)
			return nil
		},
	}
}
