package cli

import (
	"encoding/json"
	"io"

	"github.com/kapivara/eventhub/codec"
	"github.com/kapivara/eventhub/eventstore"
	"gopkg.in/yaml.v3"
)

type messageView struct {
	ID            string `json:"id" yaml:"id"`
	IdentityID    int64  `json:"identityId" yaml:"identityId"`
	PublisherID   int64  `json:"publisherId" yaml:"publisherId"`
	EventStreamID string `json:"eventStreamId" yaml:"eventStreamId"`
	Payload       string `json:"payload" yaml:"payload"`
	Position      uint64 `json:"position" yaml:"position"`
	IsFinal       bool   `json:"isFinal" yaml:"isFinal"`
	OccurredOn    string `json:"occurredOn" yaml:"occurredOn"`
}

type streamView struct {
	ID       string        `json:"id" yaml:"id"`
	Messages []messageView `json:"messages" yaml:"messages"`
}

type publisherView struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"publisherName" yaml:"publisherName"`
}

func newStreamView(stream eventstore.EventStream) streamView {
	v := streamView{
		ID:       stream.ID.String(),
		Messages: make([]messageView, len(stream.Messages)),
	}
	for i, m := range stream.Messages {
		v.Messages[i] = messageView{
			ID:            m.ID.String(),
			IdentityID:    int64(m.IdentityID),
			PublisherID:   int64(m.PublisherID),
			EventStreamID: m.EventStreamID.String(),
			Payload:       m.Payload,
			Position:      m.Position,
			IsFinal:       m.IsFinal,
			OccurredOn:    m.OccurredOn.UTC().Format(codec.TimeLayout),
		}
	}
	return v
}

// write renders v in the given format.
func write(w io.Writer, format string, v any) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
