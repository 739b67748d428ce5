package remote

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/birdie/internal/domain/model"
)

// TypeScoreEvent is the record type tag for score events.
const TypeScoreEvent = "ScoreEvent"

// Wire field keys for the score event record.
const (
	fieldRoundID           = "roundID"
	fieldHoleNumber        = "holeNumber"
	fieldPlayerID          = "playerID"
	fieldStrokeCount       = "strokeCount"
	fieldReportedBy        = "reportedByPlayerID"
	fieldDeviceID          = "deviceID"
	fieldSupersedesEventID = "supersedesEventID"
	fieldCreatedAt         = "createdAt"
)

// EncodeScoreEvent converts a score event to its wire record. The record
// name is the event's uuid string, so saving the same event twice upserts a
// single remote record.
func EncodeScoreEvent(e model.ScoreEvent) Record {
	fields := map[string]any{
		fieldRoundID:     e.RoundID.String(),
		fieldHoleNumber:  e.HoleNumber,
		fieldPlayerID:    e.PlayerID,
		fieldStrokeCount: e.StrokeCount,
		fieldReportedBy:  e.ReportedBy.String(),
		fieldDeviceID:    e.DeviceID,
		fieldCreatedAt:   e.CreatedAt,
	}
	if e.SupersedesEventID != nil {
		fields[fieldSupersedesEventID] = e.SupersedesEventID.String()
	}
	return Record{Type: TypeScoreEvent, Name: e.ID.String(), Fields: fields}
}

// DecodeScoreEvent converts a wire record back to a score event. A record
// with the wrong type tag or any missing or mistyped required field decodes
// to (zero, false), never to a partially populated event.
func DecodeScoreEvent(rec Record) (model.ScoreEvent, bool) {
	if rec.Type != TypeScoreEvent {
		return model.ScoreEvent{}, false
	}
	id, err := uuid.Parse(rec.Name)
	if err != nil {
		return model.ScoreEvent{}, false
	}

	roundID, ok := uuidField(rec.Fields, fieldRoundID)
	if !ok {
		return model.ScoreEvent{}, false
	}
	hole, ok := intField(rec.Fields, fieldHoleNumber)
	if !ok {
		return model.ScoreEvent{}, false
	}
	playerID, ok := rec.Fields[fieldPlayerID].(string)
	if !ok {
		return model.ScoreEvent{}, false
	}
	strokes, ok := intField(rec.Fields, fieldStrokeCount)
	if !ok {
		return model.ScoreEvent{}, false
	}
	reportedBy, ok := uuidField(rec.Fields, fieldReportedBy)
	if !ok {
		return model.ScoreEvent{}, false
	}
	deviceID, ok := rec.Fields[fieldDeviceID].(string)
	if !ok {
		return model.ScoreEvent{}, false
	}
	createdAt, ok := rec.Fields[fieldCreatedAt].(time.Time)
	if !ok {
		return model.ScoreEvent{}, false
	}

	event := model.ScoreEvent{
		ID:          id,
		RoundID:     roundID,
		HoleNumber:  hole,
		PlayerID:    playerID,
		StrokeCount: strokes,
		ReportedBy:  reportedBy,
		DeviceID:    deviceID,
		CreatedAt:   createdAt,
	}

	// supersedesEventID is optional, but when present it must parse.
	if raw, present := rec.Fields[fieldSupersedesEventID]; present {
		s, isString := raw.(string)
		if !isString {
			return model.ScoreEvent{}, false
		}
		supersedes, err := uuid.Parse(s)
		if err != nil {
			return model.ScoreEvent{}, false
		}
		event.SupersedesEventID = &supersedes
	}
	return event, true
}

func uuidField(fields map[string]any, key string) (uuid.UUID, bool) {
	s, ok := fields[key].(string)
	if !ok {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, false
	}
	return id, true
}

// intField accepts the integer encodings a transport may hand back.
func intField(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
