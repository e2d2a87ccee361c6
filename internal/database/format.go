package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is the canonical textual form of every stored timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime renders t in UTC using TimeLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a value produced by FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// FromEpoch converts a platform epoch in seconds. Zero means "not provided"
// and yields fallback.
func FromEpoch(epoch int64, fallback time.Time) time.Time {
	if epoch == 0 {
		return fallback
	}
	return time.Unix(epoch, 0).UTC()
}

// EpochOrNull formats an optional epoch for storage.
func EpochOrNull(epoch int64) any {
	if epoch == 0 {
		return nil
	}
	return FormatTime(time.Unix(epoch, 0))
}

// JSONArray encodes a list-valued field. A nil slice is not a list and
// yields fallback; an empty one encodes as "[]".
func JSONArray[T any](items []T, fallback any) (any, error) {
	if items == nil {
		return fallback, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode json array: %w", err)
	}
	return string(data), nil
}

// JSONBlob returns the raw JSON text of a nested object, or nil when absent.
func JSONBlob(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return string(trimmed)
}
