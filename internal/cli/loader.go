package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/roach88/auditsink/internal/config"
	"github.com/roach88/auditsink/internal/sink"
	"github.com/roach88/auditsink/internal/store"
)

// sinkConfig is a config file converted into sink construction arguments.
type sinkConfig struct {
	Path     string
	File     *config.File
	Options  sink.Options
	Settings []sink.Setting
}

// loadSinkConfig reads and converts a config file. Errors are already
// reported through f.
func loadSinkConfig(path string, f *OutputFormatter) (*sinkConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, fmt.Sprintf("config file not found: %s", path), nil)
	}

	file, err := config.Load(path)
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeConfig, "invalid config", err)
	}
	opts, err := file.SinkOptions()
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeConfig, "invalid config", err)
	}
	settings, err := file.Settings()
	if err != nil {
		return nil, f.Fail(ExitFailure, ErrCodeConfig, "invalid config", err)
	}

	f.VerboseLog("Loaded config %s (table %q)", path, opts.TableName)
	return &sinkConfig{
		Path:     path,
		File:     file,
		Options:  opts,
		Settings: settings,
	}, nil
}

// openStore opens the database named by --db, falling back to the
// connection string of the config file (or its environment override).
func openStore(cfg *sinkConfig, dbFlag string, f *OutputFormatter) (*store.Store, error) {
	dsn := strings.TrimSpace(dbFlag)
	if dsn == "" {
		dsn = strings.TrimSpace(cfg.File.ConnectionString)
	}
	if dsn == "" {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase,
			fmt.Sprintf("no database: pass --db, set connection_string or %s", config.EnvConnectionString), nil)
	}

	f.VerboseLog("Opening database %s", dsn)
	st, err := store.Open(dsn)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	return st, nil
}

// sinkFailure maps a sink construction error onto an error code.
func sinkFailure(err error, f *OutputFormatter) error {
	if sink.IsProvisionError(err) {
		return f.Fail(ExitFailure, ErrCodeProvision, "table provisioning failed", err)
	}
	var ce *sink.ConfigError
	if errors.As(err, &ce) {
		return f.Fail(ExitFailure, ErrCodeSink, ce.Message, err)
	}
	return f.Fail(ExitFailure, ErrCodeSink, "sink construction failed", err)
}
