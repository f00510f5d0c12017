package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// ParseRawEvent deserializes a RawEvent's value into a VerificationRequest.
func ParseRawEvent(raw RawEvent) (VerificationRequest, error) {
	var req VerificationRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return VerificationRequest{}, fmt.Errorf("parse raw event: %w", err)
	}
	if req.StormID == "" {
		return VerificationRequest{}, fmt.Errorf("parse raw event: %w: missing storm_id", ErrInvalidArgument)
	}
	return req, nil
}

// SerializeResult marshals a VerificationResult into an OutputEvent keyed by
// the result ID.
func SerializeResult(result VerificationResult) (OutputEvent, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize verification result: %w", err)
	}
	return OutputEvent{
		Key:   []byte(result.ID),
		Value: data,
		Headers: map[string]string{
			"storm_id":     result.StormID,
			"processed_at": result.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

// generateID produces a deterministic ID from the storm and forecast
// identifiers so that replays of the same request upsert the same result.
func generateID(stormID, forecastID string) string {
	hash := sha256.Sum256([]byte(stormID + "|" + forecastID))
	short := hex.EncodeToString(hash[:8])
	if stormID == "" {
		return short
	}
	return stormID + "-" + short
}
