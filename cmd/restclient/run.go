package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/loykin/restclient"
	"github.com/loykin/restclient/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newRunCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the plugin once over a file of input records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(v)
			if err != nil {
				return err
			}
			defer a.Close()

			inputs, err := readInputs(v.GetString("inputs"), cmd.InOrStdin())
			if err != nil {
				return err
			}
			if _, err := a.openStore(ctx, v.GetBool("no_store")); err != nil {
				return err
			}
			p, err := a.doc.NewPlugin(a.pluginOptions()...)
			if err != nil {
				return err
			}
			out, err := p.Execute(ctx, inputs)
			if err != nil {
				return err
			}
			return writeRecords(cmd.OutOrStdout(), out, v.GetString("output"))
		},
	}
	cmd.Flags().String("inputs", "-", "YAML or JSON file holding a list of input records (- for stdin)")
	cmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
	_ = v.BindPFlag("inputs", cmd.Flags().Lookup("inputs"))
	_ = v.BindPFlag("output", cmd.Flags().Lookup("output"))
	return cmd
}

// readInputs decodes a list of records. JSON is read through the YAML decoder.
func readInputs(path string, stdin io.Reader) ([]restclient.PluginParams, error) {
	var r io.Reader = stdin
	if p, ok := util.TrimEmptyCheck(path); ok && p != "-" {
		// #nosec G304 -- inputs path is provided intentionally by the user
		f, err := os.Open(filepath.Clean(p))
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	var inputs []restclient.PluginParams
	if err := yaml.NewDecoder(r).Decode(&inputs); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	if inputs == nil {
		inputs = []restclient.PluginParams{}
	}
	return inputs, nil
}

func writeRecords(w io.Writer, v any, format string) error {
	switch util.TrimAndLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("invalid output format: %s (valid: json, yaml)", format)
	}
}
