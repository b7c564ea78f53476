package main

import (
	"errors"
	"fmt"

	"github.com/loykin/restclient/pkg/status"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newHistoryCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded plugin executions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			st, err := a.openStore(cmd.Context(), v.GetBool("no_store"))
			if err != nil {
				return err
			}
			if st == nil {
				return errors.New("history store is disabled")
			}
			info, err := status.FromStore(cmd.Context(), st, v.GetInt("limit"))
			if err != nil {
				return err
			}
			color := a.doc.Logging.Color != nil && *a.doc.Logging.Color
			_, err = fmt.Fprint(cmd.OutOrStdout(), info.FormatColorized(color))
			return err
		},
	}
	cmd.Flags().Int("limit", 10, "show up to N latest executions")
	_ = v.BindPFlag("limit", cmd.Flags().Lookup("limit"))
	return cmd
}
