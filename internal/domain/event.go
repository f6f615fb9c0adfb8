package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all game event types.
type EventType string

const (
	EventGameCreated               EventType = "gameCreated"
	EventGameForfeited             EventType = "gameForfeited"
	EventStockDealtToWaste         EventType = "stockDealtToWaste"
	EventWasteResetToStock         EventType = "wasteResetToStock"
	EventWastePlayedToTableau      EventType = "wastePlayedToTableau"
	EventWastePlayedToFoundation   EventType = "wastePlayedToFoundation"
	EventTableauPlayedToFoundation EventType = "tableauPlayedToFoundation"
	EventTableauPlayedToTableau    EventType = "tableauPlayedToTableau"
	EventVictoryClaimed            EventType = "victoryClaimed"
)

// AllEventTypes lists the closed set of event types.
var AllEventTypes = []EventType{
	EventGameCreated,
	EventGameForfeited,
	EventStockDealtToWaste,
	EventWasteResetToStock,
	EventWastePlayedToTableau,
	EventWastePlayedToFoundation,
	EventTableauPlayedToFoundation,
	EventTableauPlayedToTableau,
	EventVictoryClaimed,
}

// Event is the type-specific payload of a game event. The set is closed: only
// types in this package implement it.
type Event interface {
	EventType() EventType
	isEvent()
}

// GameCreated carries the dealt starting position.
type GameCreated struct {
	Tableau Tableau `json:"tableau"`
	Stock   Pile    `json:"stock"`
}

type GameForfeited struct{}

type StockDealtToWaste struct{}

type WasteResetToStock struct{}

type WastePlayedToTableau struct {
	TableauIndex int `json:"tableauIndex"`
}

type WastePlayedToFoundation struct {
	FoundationIndex int `json:"foundationIndex"`
}

type TableauPlayedToFoundation struct {
	TableauIndex    int `json:"tableauIndex"`
	FoundationIndex int `json:"foundationIndex"`
}

// TableauPlayedToTableau moves the top Count cards of column FromIndex onto ToIndex.
type TableauPlayedToTableau struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
	Count     int `json:"count"`
}

type VictoryClaimed struct{}

func (GameCreated) EventType() EventType               { return EventGameCreated }
func (GameForfeited) EventType() EventType             { return EventGameForfeited }
func (StockDealtToWaste) EventType() EventType         { return EventStockDealtToWaste }
func (WasteResetToStock) EventType() EventType         { return EventWasteResetToStock }
func (WastePlayedToTableau) EventType() EventType      { return EventWastePlayedToTableau }
func (WastePlayedToFoundation) EventType() EventType   { return EventWastePlayedToFoundation }
func (TableauPlayedToFoundation) EventType() EventType { return EventTableauPlayedToFoundation }
func (TableauPlayedToTableau) EventType() EventType    { return EventTableauPlayedToTableau }
func (VictoryClaimed) EventType() EventType            { return EventVictoryClaimed }

func (GameCreated) isEvent()               {}
func (GameForfeited) isEvent()             {}
func (StockDealtToWaste) isEvent()         {}
func (WasteResetToStock) isEvent()         {}
func (WastePlayedToTableau) isEvent()      {}
func (WastePlayedToFoundation) isEvent()   {}
func (TableauPlayedToFoundation) isEvent() {}
func (TableauPlayedToTableau) isEvent()    {}
func (VictoryClaimed) isEvent()            {}

// GameEvent is a persisted entry in a game's append-only log.
// Sequence is 1-based and strictly increasing per game.
type GameEvent struct {
	EventID   uuid.UUID
	GameID    uuid.UUID
	Sequence  int
	Timestamp time.Time
	Payload   Event
}

// Type returns the payload's event type.
func (e GameEvent) Type() EventType {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.EventType()
}

// NewEventPayload returns a zero payload for the given type.
func NewEventPayload(t EventType) (Event, error) {
	switch t {
	case EventGameCreated:
		return &GameCreated{}, nil
	case EventGameForfeited:
		return &GameForfeited{}, nil
	case EventStockDealtToWaste:
		return &StockDealtToWaste{}, nil
	case EventWasteResetToStock:
		return &WasteResetToStock{}, nil
	case EventWastePlayedToTableau:
		return &WastePlayedToTableau{}, nil
	case EventWastePlayedToFoundation:
		return &WastePlayedToFoundation{}, nil
	case EventTableauPlayedToFoundation:
		return &TableauPlayedToFoundation{}, nil
	case EventTableauPlayedToTableau:
		return &TableauPlayedToTableau{}, nil
	case EventVictoryClaimed:
		return &VictoryClaimed{}, nil
	default:
		return nil, fmt.Errorf("unknown event type: %q", t)
	}
}

// EncodePayload serializes the type-specific fields of an event.
func EncodePayload(evt Event) (json.RawMessage, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", evt.EventType(), err)
	}
	return data, nil
}

// DecodePayload parses stored payload fields back into a value-typed Event.
func DecodePayload(t EventType, data json.RawMessage) (Event, error) {
	ptr, err := NewEventPayload(t)
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, ptr); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
	}
	return derefEvent(ptr), nil
}

func derefEvent(e Event) Event {
	switch p := e.(type) {
	case *GameCreated:
		return *p
	case *GameForfeited:
		return *p
	case *StockDealtToWaste:
		return *p
	case *WasteResetToStock:
		return *p
	case *WastePlayedToTableau:
		return *p
	case *WastePlayedToFoundation:
		return *p
	case *TableauPlayedToFoundation:
		return *p
	case *TableauPlayedToTableau:
		return *p
	case *VictoryClaimed:
		return *p
	}
	return e
}

type eventEnvelope struct {
	EventID   uuid.UUID `json:"eventId"`
	GameID    uuid.UUID `json:"gameId"`
	Sequence  int       `json:"sequence"`
	EventType EventType `json:"eventType"`
	Timestamp time.Time `json:"timestamp"`
}

// MarshalJSON flattens the payload fields next to the envelope fields,
// e.g. {"eventType":"wastePlayedToTableau","gameId":"…","tableauIndex":3,…}.
func (e GameEvent) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("event %s has no payload", e.EventID)
	}
	fields := map[string]json.RawMessage{}
	payload, err := EncodePayload(e.Payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("flatten %s payload: %w", e.Type(), err)
	}

	envelope, err := json.Marshal(eventEnvelope{
		EventID:   e.EventID,
		GameID:    e.GameID,
		Sequence:  e.Sequence,
		EventType: e.Type(),
		Timestamp: e.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(envelope, &fields); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reverses MarshalJSON, dispatching on eventType.
func (e *GameEvent) UnmarshalJSON(data []byte) error {
	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode event envelope: %w", err)
	}
	payload, err := DecodePayload(env.EventType, data)
	if err != nil {
		return err
	}
	*e = GameEvent{
		EventID:   env.EventID,
		GameID:    env.GameID,
		Sequence:  env.Sequence,
		Timestamp: env.Timestamp,
		Payload:   payload,
	}
	return nil
}
