// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/cappi/internal/models"
)

// EventTypeRecommendationGenerated identifies RecommendationGenerated payloads.
const EventTypeRecommendationGenerated = "recommendation.generated"

// Metadata keys set on every message.
const (
	MetadataEventType = "event_type"
	MetadataUserID    = "user_id"
	MetadataRecordID  = "record_id"
	// MetadataRequestID is set only when the publishing context carries one.
	MetadataRequestID = "request_id"
)

// RecommendationGenerated is the payload published after a generation.
type RecommendationGenerated struct {
	EventID    string                       `json:"event_id"`
	Type       string                       `json:"type"`
	OccurredAt time.Time                    `json:"occurred_at"`
	Record     *models.RecommendationRecord `json:"record"`
}

// NewRecommendationGenerated wraps record in an envelope with a fresh id.
func NewRecommendationGenerated(record *models.RecommendationRecord, now time.Time) *RecommendationGenerated {
	return &RecommendationGenerated{
		EventID:    uuid.NewString(),
		Type:       EventTypeRecommendationGenerated,
		OccurredAt: now.UTC(),
		Record:     record,
	}
}

// ToMessage encodes the event as a Watermill message. The record id doubles
// as the JetStream deduplication id.
func (e *RecommendationGenerated) ToMessage() (*message.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(e.EventID, data)
	msg.Metadata.Set(MetadataEventType, e.Type)
	msg.Metadata.Set(MetadataUserID, e.Record.UserID)
	msg.Metadata.Set(MetadataRecordID, e.Record.ID)
	msg.Metadata.Set(natsgo.MsgIdHdr, e.Record.ID)
	return msg, nil
}

// DecodeRecommendationGenerated decodes a message produced by ToMessage.
func DecodeRecommendationGenerated(msg *message.Message) (*RecommendationGenerated, error) {
	if t := msg.Metadata.Get(MetadataEventType); t != "" && t != EventTypeRecommendationGenerated {
		return nil, fmt.Errorf("unexpected event type %q", t)
	}
	var e RecommendationGenerated
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event %s: %w", msg.UUID, err)
	}
	if e.Record == nil {
		return nil, errors.New("event has no record")
	}
	return &e, nil
}
