// Package codec converts event store records to and from their storage
// representation: an ordered JSON document, gzip-compressed on disk.
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/kapivara/eventhub/eventstore"
	uuid "github.com/satori/go.uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Field names of an event message document.
const (
	FieldID            = "id"
	FieldIdentityID    = "identityId"
	FieldPublisherID   = "publisherId"
	FieldEventStreamID = "eventStreamId"
	FieldPayload       = "payload"
	FieldPosition      = "position"
	FieldIsFinal       = "isFinal"
	FieldOccurredOn    = "occurredOn"
)

// Fields lists the event message document fields in serialized order.
var Fields = []string{
	FieldID,
	FieldIdentityID,
	FieldPublisherID,
	FieldEventStreamID,
	FieldPayload,
	FieldPosition,
	FieldIsFinal,
	FieldOccurredOn,
}

// TimeLayout is the layout of the occurredOn field.
const TimeLayout = time.RFC3339Nano

var (
	errMissing = errors.New("field is missing")
	errNilUUID = errors.New("must not be the nil UUID")
)

// EncodeDocument renders m as a JSON object whose fields appear in the order
// given by Fields.
func EncodeDocument(m eventstore.EventMessage) ([]byte, error) {
	if m.ID.IsNil() {
		return nil, fieldError(FieldID, errNilUUID)
	}
	if m.EventStreamID.IsNil() {
		return nil, fieldError(FieldEventStreamID, errNilUUID)
	}
	if !utf8.ValidString(m.Payload) {
		return nil, fieldError(FieldPayload, errors.New("payload is not valid UTF-8"))
	}

	values := []interface{}{
		m.ID.String(),
		int64(m.IdentityID),
		int64(m.PublisherID),
		m.EventStreamID.String(),
		m.Payload,
		m.Position,
		m.IsFinal,
		m.OccurredOn.UTC().Format(TimeLayout),
	}

	var (
		doc []byte
		err error
	)
	for i, field := range Fields {
		doc, err = sjson.SetBytes(doc, field, values[i])
		if err != nil {
			return nil, fieldError(field, err)
		}
	}

	return doc, nil
}

// DecodeDocument parses a document produced by EncodeDocument.
//
// Every field must be present with the expected JSON type; no defaults are
// ever substituted.
func DecodeDocument(data []byte) (eventstore.EventMessage, error) {
	doc, err := parseObject(data)
	if err != nil {
		return eventstore.EventMessage{}, err
	}

	var m eventstore.EventMessage

	id, err := uuidField(doc, FieldID)
	if err != nil {
		return m, err
	}
	m.ID = eventstore.EventMessageID(id)

	identityID, err := intField(doc, FieldIdentityID)
	if err != nil {
		return m, err
	}
	m.IdentityID = eventstore.IdentityID(identityID)

	publisherID, err := intField(doc, FieldPublisherID)
	if err != nil {
		return m, err
	}
	m.PublisherID = eventstore.PublisherID(publisherID)

	streamID, err := uuidField(doc, FieldEventStreamID)
	if err != nil {
		return m, err
	}
	m.EventStreamID = eventstore.EventStreamID(streamID)

	if m.Payload, err = stringField(doc, FieldPayload); err != nil {
		return m, err
	}

	r, err := field(doc, FieldPosition, gjson.Number)
	if err != nil {
		return m, err
	}
	if m.Position, err = strconv.ParseUint(r.Raw, 10, 64); err != nil {
		return m, fieldError(FieldPosition, err)
	}

	if m.IsFinal, err = boolField(doc, FieldIsFinal); err != nil {
		return m, err
	}

	occurredOn, err := stringField(doc, FieldOccurredOn)
	if err != nil {
		return m, err
	}
	t, err := time.Parse(TimeLayout, occurredOn)
	if err != nil {
		return m, fieldError(FieldOccurredOn, err)
	}
	m.OccurredOn = t.UTC()

	return m, nil
}

func parseObject(data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, &eventstore.SerializationError{
			Err: errors.New("document is not valid JSON"),
		}
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return gjson.Result{}, &eventstore.SerializationError{
			Err: fmt.Errorf("document is a JSON %s, expected an object", doc.Type),
		}
	}

	return doc, nil
}

func field(doc gjson.Result, name string, want gjson.Type) (gjson.Result, error) {
	r := doc.Get(name)
	if !r.Exists() {
		return r, fieldError(name, errMissing)
	}
	if r.Type != want {
		return r, fieldError(name, fmt.Errorf("expected %s, got %s", want, r.Type))
	}
	return r, nil
}

func stringField(doc gjson.Result, name string) (string, error) {
	r, err := field(doc, name, gjson.String)
	if err != nil {
		return "", err
	}
	return r.Str, nil
}

func intField(doc gjson.Result, name string) (int64, error) {
	r, err := field(doc, name, gjson.Number)
	if err != nil {
		return 0, err
	}

	// Raw is parsed directly so that fractions and exponents are rejected
	// rather than truncated.
	n, err := strconv.ParseInt(r.Raw, 10, 64)
	if err != nil {
		return 0, fieldError(name, err)
	}
	return n, nil
}

func boolField(doc gjson.Result, name string) (bool, error) {
	r := doc.Get(name)
	if !r.Exists() {
		return false, fieldError(name, errMissing)
	}

	switch r.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	default:
		return false, fieldError(name, fmt.Errorf("expected boolean, got %s", r.Type))
	}
}

func uuidField(doc gjson.Result, name string) (uuid.UUID, error) {
	s, err := stringField(doc, name)
	if err != nil {
		return uuid.Nil, err
	}

	u, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, fieldError(name, err)
	}
	if uuid.Equal(u, uuid.Nil) {
		return uuid.Nil, fieldError(name, errNilUUID)
	}
	return u, nil
}

func fieldError(name string, err error) error {
	return &eventstore.SerializationError{
		Field: name,
		Err:   err,
	}
}
