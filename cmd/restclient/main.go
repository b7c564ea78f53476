package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:          "restclient",
		Short:        "Enrich observation records with a value fetched over HTTP",
		SilenceUsage: true,
	}

	// Defaults
	v.SetDefault("config", "./config/config.yaml")
	v.SetDefault("no_store", false)

	// Environment variables support: RESTCLIENT_CONFIG, RESTCLIENT_NO_STORE, ...
	v.SetEnvPrefix("RESTCLIENT")
	v.AutomaticEnv()

	root.PersistentFlags().String("config", v.GetString("config"), "path to a config yaml")
	root.PersistentFlags().Bool("no-store", v.GetBool("no_store"), "do not record executions in the history store")
	_ = v.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("no_store", root.PersistentFlags().Lookup("no-store"))

	root.AddCommand(newRunCmd(v))
	root.AddCommand(newValidateCmd(v))
	root.AddCommand(newServeCmd(v))
	root.AddCommand(newHistoryCmd(v))
	return root
}

func main() {
	if err := newRootCmd(viper.GetViper()).Execute(); err != nil {
		exitHandler.LogFatalError(err, "command execution failed")
	}
}
