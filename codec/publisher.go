package codec

import (
	"errors"
	"unicode/utf8"

	"github.com/kapivara/eventhub/eventstore"
	"github.com/tidwall/sjson"
)

// Field names of a publisher document.
const (
	FieldPublisherName = "publisherName"
)

// EncodePublisher renders p as {"id":...,"publisherName":...}.
func EncodePublisher(p eventstore.Publisher) ([]byte, error) {
	if !utf8.ValidString(p.Name) {
		return nil, fieldError(FieldPublisherName, errors.New("name is not valid UTF-8"))
	}

	doc, err := sjson.SetBytes(nil, FieldID, int64(p.ID))
	if err != nil {
		return nil, fieldError(FieldID, err)
	}

	doc, err = sjson.SetBytes(doc, FieldPublisherName, p.Name)
	if err != nil {
		return nil, fieldError(FieldPublisherName, err)
	}

	return doc, nil
}

// DecodePublisher parses a document produced by EncodePublisher.
func DecodePublisher(data []byte) (eventstore.Publisher, error) {
	doc, err := parseObject(data)
	if err != nil {
		return eventstore.Publisher{}, err
	}

	id, err := intField(doc, FieldID)
	if err != nil {
		return eventstore.Publisher{}, err
	}

	name, err := stringField(doc, FieldPublisherName)
	if err != nil {
		return eventstore.Publisher{}, err
	}

	return eventstore.Publisher{
		ID:   eventstore.PublisherID(id),
		Name: name,
	}, nil
}
