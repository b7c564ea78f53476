package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/loykin/restclient"
	"github.com/loykin/restclient/cmd/restclient/config"
	"github.com/spf13/viper"
)

// app is the loaded configuration shared by all commands.
type app struct {
	doc    config.ConfigDoc
	dir    string
	logger *restclient.Logger
	store  *restclient.Store
}

func loadApp(v *viper.Viper) (*app, error) {
	path := v.GetString("config")
	a := &app{dir: filepath.Dir(path)}
	if err := a.doc.Load(path); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	logger, err := a.doc.SetupLogging()
	if err != nil {
		return nil, err
	}
	a.logger = logger
	return a, nil
}

// openStore returns nil when the store is disabled by config or flag.
func (a *app) openStore(ctx context.Context, noStore bool) (*restclient.Store, error) {
	if noStore {
		return nil, nil
	}
	cfg := a.doc.Store.ToStoreOptions(a.dir)
	if cfg == nil {
		return nil, nil
	}
	st, err := restclient.OpenStore(ctx, *cfg)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	a.store = st
	return st, nil
}

// pluginOptions wires the logger and, when a store is open, the recorder.
func (a *app) pluginOptions() []restclient.Option {
	opts := []restclient.Option{restclient.WithLogger(a.logger)}
	if a.store != nil {
		opts = append(opts, restclient.WithRecorder(restclient.NewStoreRecorder(a.store, a.doc.Store.SaveResponseBody)))
	}
	return opts
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Close()
	}
}
