package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/kapivara/eventhub/dynamostore"
	"github.com/kapivara/eventhub/eventstore"
	"github.com/kapivara/eventhub/filedb"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/exp/slog"
)

// EnvPrefix is the prefix of the environment variables read by the CLI.
const EnvPrefix = "EVENTHUB"

// Supported backends.
const (
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
)

// Config is the process-wide configuration.
type Config struct {
	Backend  string     `default:"file"`
	LogLevel slog.Level `split_words:"true" default:"info"`
}

// LoadConfig reads the configuration from EVENTHUB_* environment variables.
func LoadConfig() (Config, error) {
	var c Config
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return Config{}, err
	}
	if c.Backend != BackendFile && c.Backend != BackendDynamoDB {
		return Config{}, fmt.Errorf("unsupported backend %q", c.Backend)
	}
	return c, nil
}

// NewLogger returns a text logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}

// OpenFromEnv returns an Opener for the configured backend. The backend's
// own settings are read when the opener is called.
func (c Config) OpenFromEnv() Opener {
	return func(ctx context.Context, logger *slog.Logger) (Repositories, error) {
		var repos Repositories

		switch c.Backend {
		case BackendDynamoDB:
			dc, err := dynamostore.LoadConfig("AWSCONFIG")
			if err != nil {
				return Repositories{}, err
			}
			streams, publishers, err := dynamostore.Open(ctx, dc, logger)
			if err != nil {
				return Repositories{}, err
			}
			repos = Repositories{streams, publishers}

		default:
			fc, err := filedb.LoadConfig(EnvPrefix)
			if err != nil {
				return Repositories{}, err
			}
			streams, publishers, err := filedb.Open(fc, logger)
			if err != nil {
				return Repositories{}, err
			}
			repos = Repositories{streams, publishers}
		}

		repos.Streams = eventstore.NewObservedRepository(
			repos.Streams,
			&closedStreamObserver{logger},
		)

		return repos, nil
	}
}

// closedStreamObserver logs the streams whose final message was stored.
type closedStreamObserver struct {
	logger *slog.Logger
}

func (o *closedStreamObserver) WillObserve(m eventstore.EventMessage) bool {
	return m.IsFinal
}

func (o *closedStreamObserver) Observe(ctx context.Context, m eventstore.EventMessage) error {
	o.logger.InfoContext(
		ctx,
		"final event message stored",
		slog.String("event_stream_id", m.EventStreamID.String()),
		slog.Uint64("position", m.Position),
	)
	return nil
}

func (o *closedStreamObserver) OnObserveFailed(err error) {
	o.logger.Warn("unable to observe event message", slog.String("error", err.Error()))
}
