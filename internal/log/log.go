package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

type Options struct {
	Level    string
	FilePath string
	Console  io.Writer
}

// InitLogger builds the process logger once; later calls return the same
// logger. An empty FilePath disables the rotating file output.
func InitLogger(opts Options) zerolog.Logger {
	once.Do(func() {
		zerolog.DurationFieldUnit = time.Millisecond
		zerolog.ErrorFieldName = "error"
		zerolog.ErrorStackFieldName = "stack-trace"
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.LevelFieldName = "level"
		zerolog.MessageFieldName = "message"
		zerolog.TimestampFieldName = "timestamp"

		level, err := zerolog.ParseLevel(opts.Level)
		if err != nil || opts.Level == "" {
			level = zerolog.InfoLevel
		}

		console := opts.Console
		if console == nil {
			console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		}
		writers := []io.Writer{console}
		if opts.FilePath != "" {
			writers = append(writers, &lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    10,
				MaxBackups: 3,
				Compress:   true,
			})
		}

		logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
			Level(level).
			With().
			Timestamp().
			Caller().
			Stack().
			Int("pid", os.Getpid()).
			Logger()

		logger.Debug().
			Str(KeyTag, "InitLogger").
			Str(KeyProcess, "InitLogger").
			Msg("finish initiating logging")
	})
	return logger
}
