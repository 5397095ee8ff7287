package telemetry

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// UnknownDevice is the dimension value used when an event carries no device_id
const UnknownDevice = "unknown"

// Event is one telemetry message as published by a device on
// dt/vibration/<device_id>/telemetry and forwarded by the IoT rule.
type Event struct {
	DeviceID string
	// Timestamp is in epoch seconds. It is nil when the event has no timestamp.
	Timestamp *int64
	Vibration map[string]interface{}
	Health    map[string]interface{}
}

// DecodeEvent decodes a telemetry message. Missing keys are not an error. Numbers
// are kept as json.Number so that their literal text survives.
func DecodeEvent(data []byte) (Event, error) {
	var raw map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Event{}, fmt.Errorf("cannot decode telemetry event: %w", err)
	}
	if raw == nil {
		return Event{}, fmt.Errorf("telemetry event is not an object")
	}

	ev := Event{
		DeviceID:  deviceID(raw["device_id"]),
		Vibration: group(raw["vibration"]),
		Health:    group(raw["health"]),
	}
	if ts, ok := raw["timestamp"]; ok && ts != nil {
		t, err := timestamp(ts)
		if err != nil {
			return Event{}, err
		}
		ev.Timestamp = &t
	}
	return ev, nil
}

func deviceID(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return UnknownDevice
	case string:
		return id
	case json.Number:
		return id.String()
	default:
		b, err := json.Marshal(id)
		if err != nil {
			return UnknownDevice
		}
		return string(b)
	}
}

// group returns the measure object, or an empty map if v is absent or not an object
func group(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func timestamp(v interface{}) (int64, error) {
	var n json.Number
	switch t := v.(type) {
	case json.Number:
		n = t
	case string:
		n = json.Number(t)
	default:
		return 0, fmt.Errorf("invalid timestamp %v", v)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || !fitsInt64(f) {
		return 0, fmt.Errorf("invalid timestamp %q", n.String())
	}
	return int64(f), nil
}
