// Package log builds the zap logger used by the engine and the CLI.
package log

import (
	"os"
	"path/filepath"
	"time"

	zaplogfmt "github.com/jsternberg/zap-logfmt"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is read from the environment by cleanenv.
type Config struct {
	Format string `env:"LOG_FORMAT" env-default:"console"` // console, logfmt or json
	Level  string `env:"LOG_LEVEL" env-default:"info"`     // debug, info, warn, error
	Output string `env:"LOG_OUTPUT" env-default:"stderr"`  // stderr, stdout or file path
}

// New returns a logger for conf. Extra write syncers receive every entry
// in addition to the configured output.
func New(conf Config, extraWriters ...zapcore.WriteSyncer) (*zap.Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.UTC().Format(time.RFC3339))
	}

	var encoder zapcore.Encoder
	switch conf.Format {
	case "logfmt":
		encoder = zaplogfmt.NewEncoder(encCfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "", "console":
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, errors.Errorf("unknown log format %q", conf.Format)
	}

	level := zapcore.InfoLevel
	if conf.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(conf.Level); err != nil {
			return nil, errors.Wrap(err, "log level")
		}
	}

	var ws zapcore.WriteSyncer
	switch conf.Output {
	case "", "stderr":
		ws = zapcore.Lock(os.Stderr)
	case "stdout":
		ws = zapcore.Lock(os.Stdout)
	default:
		if err := os.MkdirAll(filepath.Dir(conf.Output), 0o755); err != nil {
			return nil, errors.Wrap(err, "create log directory")
		}
		file, err := os.OpenFile(conf.Output, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		ws = zapcore.AddSync(file)
	}
	wss := zapcore.NewMultiWriteSyncer(append(extraWriters, ws)...)

	core := zapcore.NewCore(encoder, wss, level)
	return zap.New(core, zap.AddCaller()), nil
}
