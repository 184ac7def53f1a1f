package filedb

import (
	"fmt"
	"path"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/kapivara/eventhub/codec"
	"github.com/kapivara/eventhub/eventstore"
)

const (
	// DefaultBuckets is the default number of shard buckets.
	DefaultBuckets = 4096

	// MaxBuckets is the largest accepted number of shard buckets.
	MaxBuckets = 1 << 20
)

// Resolver maps streams and messages to their location relative to the
// storage root: <bucket>/<eventStreamId>/<eventMessageId>.gz
//
// The zero value spreads streams over DefaultBuckets buckets.
type Resolver struct {
	buckets uint64
	width   int
}

// NewResolver returns a resolver that spreads streams over the given number of
// buckets.
func NewResolver(buckets int) (Resolver, error) {
	if buckets < 1 || buckets > MaxBuckets {
		return Resolver{}, fmt.Errorf("bucket count must be between 1 and %d, got %d", MaxBuckets, buckets)
	}

	return Resolver{
		buckets: uint64(buckets),
		width:   len(strconv.Itoa(buckets - 1)),
	}, nil
}

var defaultResolver, _ = NewResolver(DefaultBuckets)

func (r Resolver) orDefault() Resolver {
	if r.buckets == 0 {
		return defaultResolver
	}
	return r
}

// Buckets returns the number of buckets.
func (r Resolver) Buckets() int {
	return int(r.orDefault().buckets)
}

// Bucket returns the bucket directory of a stream, a zero-padded decimal in
// the range [0, Buckets()).
func (r Resolver) Bucket(id eventstore.EventStreamID) string {
	r = r.orDefault()
	n := xxhash.Sum64String(id.String()) % r.buckets
	return fmt.Sprintf("%0*d", r.width, n)
}

// StreamDir returns the directory holding every message of a stream.
func (r Resolver) StreamDir(id eventstore.EventStreamID) string {
	return path.Join(r.Bucket(id), id.String())
}

// MessageFile returns the path of a single message.
func (r Resolver) MessageFile(streamID eventstore.EventStreamID, id eventstore.EventMessageID) string {
	return path.Join(r.StreamDir(streamID), FileName(id))
}

// FileName returns the name of the file holding a message.
func FileName(id eventstore.EventMessageID) string {
	return id.String() + codec.Extension
}
