package filedb

import (
	"fmt"
	"path/filepath"

	"github.com/kapivara/eventhub/codec"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/exp/slog"
)

// Config is the configuration of the file-backed repositories. It is
// normally filled from the environment by LoadConfig.
type Config struct {
	// StorageRoot is the directory holding the stream buckets.
	StorageRoot string `split_words:"true" required:"true"`

	// BucketCount is the number of shard buckets streams are spread over.
	// Changing it relocates existing streams, so it must stay fixed for the
	// lifetime of a storage root.
	BucketCount int `split_words:"true" default:"4096"`

	// PublisherRoot is the directory holding publishers. It defaults to
	// <StorageRoot>/publishers.
	PublisherRoot string `split_words:"true"`

	// ReadConcurrency bounds the number of files read in parallel by a fetch.
	ReadConcurrency int `split_words:"true" default:"16"`
}

// LoadConfig reads the configuration from environment variables named
// <prefix>_STORAGE_ROOT, <prefix>_BUCKET_COUNT and so on, and validates it.
func LoadConfig(prefix string) (Config, error) {
	var c Config
	if err := envconfig.Process(prefix, &c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.StorageRoot == "" {
		return fmt.Errorf("storage root must not be empty")
	}
	if c.BucketCount < 1 || c.BucketCount > MaxBuckets {
		return fmt.Errorf("bucket count must be between 1 and %d, got %d", MaxBuckets, c.BucketCount)
	}
	if c.ReadConcurrency < 1 {
		return fmt.Errorf("read concurrency must be at least 1, got %d", c.ReadConcurrency)
	}
	return nil
}

func (c Config) publisherRoot() string {
	if c.PublisherRoot != "" {
		return c.PublisherRoot
	}
	return filepath.Join(c.StorageRoot, "publishers")
}

// Open creates the repositories described by the configuration.
func Open(c Config, logger *slog.Logger) (*EventStreamRepository, *PublisherRepository, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	resolver, err := NewResolver(c.BucketCount)
	if err != nil {
		return nil, nil, err
	}

	streams, err := NewFileDatabase(c.StorageRoot, c.ReadConcurrency)
	if err != nil {
		return nil, nil, err
	}

	publishers, err := NewFileDatabase(c.publisherRoot(), c.ReadConcurrency)
	if err != nil {
		return nil, nil, err
	}

	serializer := codec.NewJSONSerializer()

	return NewEventStreamRepository(streams, resolver, serializer, logger),
		NewPublisherRepository(publishers, serializer, logger),
		nil
}
