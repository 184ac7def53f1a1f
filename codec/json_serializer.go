package codec

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/kapivara/eventhub/eventstore"
)

// Extension is the file extension of a stored document.
const Extension = ".gz"

// JSONSerializer stores documents as gzip-compressed JSON
type JSONSerializer struct {
	level int
}

// MarshalMessage encodes the message document and compresses it
func (j *JSONSerializer) MarshalMessage(m eventstore.EventMessage) ([]byte, error) {
	doc, err := EncodeDocument(m)
	if err != nil {
		return nil, err
	}
	return j.compress(doc)
}

// UnmarshalMessage decompresses and decodes a message document
func (j *JSONSerializer) UnmarshalMessage(data []byte) (eventstore.EventMessage, error) {
	doc, err := j.decompress(data)
	if err != nil {
		return eventstore.EventMessage{}, err
	}
	return DecodeDocument(doc)
}

// MarshalPublisher encodes the publisher document and compresses it
func (j *JSONSerializer) MarshalPublisher(p eventstore.Publisher) ([]byte, error) {
	doc, err := EncodePublisher(p)
	if err != nil {
		return nil, err
	}
	return j.compress(doc)
}

// UnmarshalPublisher decompresses and decodes a publisher document
func (j *JSONSerializer) UnmarshalPublisher(data []byte) (eventstore.Publisher, error) {
	doc, err := j.decompress(data)
	if err != nil {
		return eventstore.Publisher{}, err
	}
	return DecodePublisher(doc)
}

func (j *JSONSerializer) compress(doc []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := gzip.NewWriterLevel(&buf, j.level)
	if err != nil {
		return nil, &eventstore.SerializationError{Err: err}
	}
	if _, err := w.Write(doc); err != nil {
		return nil, &eventstore.SerializationError{Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &eventstore.SerializationError{Err: err}
	}

	return buf.Bytes(), nil
}

func (j *JSONSerializer) decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &eventstore.SerializationError{
			Err: fmt.Errorf("unable to open gzip stream: %w", err),
		}
	}

	doc, err := io.ReadAll(r)
	if err != nil {
		return nil, &eventstore.SerializationError{
			Err: fmt.Errorf("unable to decompress document: %w", err),
		}
	}
	if err := r.Close(); err != nil {
		return nil, &eventstore.SerializationError{Err: err}
	}

	return doc, nil
}

// NewJSONSerializer constructs a JSONSerializer using the default gzip
// compression level.
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{level: gzip.DefaultCompression}
}

// NewJSONSerializerLevel constructs a JSONSerializer with the given gzip
// compression level.
func NewJSONSerializerLevel(level int) (*JSONSerializer, error) {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, fmt.Errorf("invalid gzip compression level %d", level)
	}
	return &JSONSerializer{level: level}, nil
}
