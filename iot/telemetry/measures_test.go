package telemetry

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, payload string) Event {
	t.Helper()
	ev, err := DecodeEvent([]byte(payload))
	require.NoError(t, err)
	return ev
}

func byName(records []Record) map[string]Record {
	m := map[string]Record{}
	for _, r := range records {
		m[r.MeasureName] = r
	}
	return m
}

func TestBuildRecords_Example(t *testing.T) {
	ev := mustDecode(t, `{"device_id":"dev1","timestamp":1000,"vibration":{"rms_g":0.5},"health":{"battery_v":3.7,"rssi_dbm":0}}`)

	records := BuildRecords(ev, time.Unix(5, 0))
	require.Len(t, records, 3)

	m := byName(records)
	assert.Equal(t, "0.5", m["rms_g"].MeasureValue)
	assert.Equal(t, types.MeasureValueTypeDouble, m["rms_g"].MeasureValueType)
	assert.Equal(t, "3.7", m["battery_v"].MeasureValue)
	assert.Equal(t, types.MeasureValueTypeDouble, m["battery_v"].MeasureValueType)
	assert.Equal(t, "0", m["rssi_dbm"].MeasureValue)
	assert.Equal(t, types.MeasureValueTypeBigint, m["rssi_dbm"].MeasureValueType)

	for _, r := range records {
		assert.Equal(t, "1000", r.Time)
		assert.Equal(t, types.TimeUnitSeconds, r.TimeUnit)
		assert.Equal(t, []Dimension{{Name: "device_id", Value: "dev1"}}, r.Dimensions)
	}
}

func TestBuildRecords_AllMeasures(t *testing.T) {
	ev := mustDecode(t, `{
		"device_id": "dev1",
		"timestamp": 1700000000,
		"vibration": {"rms_g": 0.0123, "peak_g": 1.5},
		"health": {
			"battery_v": 4.12, "temp_c": 31.5, "imu_temp_c": 29.0,
			"rssi_dbm": -61, "uptime_sec": 3600, "free_heap": 182340
		}
	}`)

	records := BuildRecords(ev, time.Now())
	require.Len(t, records, len(Measures))

	// records follow the measure table
	for i, m := range Measures {
		assert.Equal(t, m.Name, records[i].MeasureName)
		assert.Equal(t, m.Type, records[i].MeasureValueType)
	}

	bigints := map[string]bool{"rssi_dbm": true, "uptime_sec": true, "free_heap": true}
	for _, r := range records {
		if bigints[r.MeasureName] {
			assert.Equal(t, types.MeasureValueTypeBigint, r.MeasureValueType, r.MeasureName)
		} else {
			assert.Equal(t, types.MeasureValueTypeDouble, r.MeasureValueType, r.MeasureName)
		}
	}

	m := byName(records)
	assert.Equal(t, "29.0", m["imu_temp_c"].MeasureValue)
	assert.Equal(t, "-61", m["rssi_dbm"].MeasureValue)
	assert.Equal(t, "182340", m["free_heap"].MeasureValue)
}

func TestBuildRecords_Presence(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected []string
	}{
		{
			name:    "no groups",
			payload: `{"device_id":"dev2"}`,
		},
		{
			name:    "empty groups",
			payload: `{"device_id":"dev2","vibration":{},"health":{}}`,
		},
		{
			name:    "null groups",
			payload: `{"device_id":"dev2","vibration":null,"health":null}`,
		},
		{
			name:    "null values",
			payload: `{"vibration":{"rms_g":null},"health":{"temp_c":null,"free_heap":null}}`,
		},
		{
			name:    "unknown fields",
			payload: `{"vibration":{"x_g":1.0},"health":{"voltage":3.3},"extra":{"rms_g":1}}`,
		},
		{
			name:     "zero values",
			payload:  `{"vibration":{"rms_g":0,"peak_g":0.0},"health":{"uptime_sec":0}}`,
			expected: []string{"rms_g", "peak_g", "uptime_sec"},
		},
		{
			name:     "measure in the wrong group",
			payload:  `{"vibration":{"battery_v":3.3},"health":{"peak_g":1.0,"temp_c":20.5}}`,
			expected: []string{"temp_c"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			records := BuildRecords(mustDecode(t, tc.payload), time.Now())
			var names []string
			for _, r := range records {
				names = append(names, r.MeasureName)
			}
			assert.ElementsMatch(t, tc.expected, names)
		})
	}
}

func TestBuildRecords_DefaultTimestamp(t *testing.T) {
	ev := mustDecode(t, `{"device_id":"dev1","vibration":{"rms_g":0.5}}`)
	records := BuildRecords(ev, time.Unix(1234, 0))
	require.Len(t, records, 1)
	assert.Equal(t, "1234", records[0].Time)

	ev = mustDecode(t, `{"device_id":"dev1","timestamp":null,"vibration":{"rms_g":0.5}}`)
	records = BuildRecords(ev, time.Unix(1234, 0))
	assert.Equal(t, "1234", records[0].Time)
}

func TestBuildRecords_NonNumericValues(t *testing.T) {
	ev := mustDecode(t, `{"vibration":{"rms_g":"high","peak_g":1.25},"health":{"battery_v":"3.7","rssi_dbm":-60.5,"free_heap":true,"temp_c":{"c":20}}}`)

	records := BuildRecords(ev, time.Now())
	require.Len(t, records, 6)

	m := byName(records)
	assert.Equal(t, "high", m["rms_g"].MeasureValue)
	assert.Equal(t, "1.25", m["peak_g"].MeasureValue)
	assert.Equal(t, "3.7", m["battery_v"].MeasureValue)
	assert.Equal(t, types.MeasureValueTypeDouble, m["battery_v"].MeasureValueType)
	assert.Equal(t, "-60.5", m["rssi_dbm"].MeasureValue)
	assert.Equal(t, types.MeasureValueTypeBigint, m["rssi_dbm"].MeasureValueType)
	assert.Equal(t, "true", m["free_heap"].MeasureValue)
	assert.Equal(t, `{"c":20}`, m["temp_c"].MeasureValue)
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		literal   string
		valueType types.MeasureValueType
		expected  string
	}{
		{"0.5", types.MeasureValueTypeDouble, "0.5"},
		{"0.5000", types.MeasureValueTypeDouble, "0.5"},
		{"3", types.MeasureValueTypeDouble, "3"},
		{"0.0", types.MeasureValueTypeDouble, "0.0"},
		{"1e3", types.MeasureValueTypeDouble, "1000.0"},
		{"1e400", types.MeasureValueTypeDouble, "1e400"},
		{"-61", types.MeasureValueTypeBigint, "-61"},
		{"12.0", types.MeasureValueTypeBigint, "12"},
		{"12.5", types.MeasureValueTypeBigint, "12.5"},
		{"4294967296", types.MeasureValueTypeBigint, "4294967296"},
		{"9223372036854775807", types.MeasureValueTypeBigint, "9223372036854775807"},
		{"9223372036854775808.0", types.MeasureValueTypeBigint, "9223372036854775808.0"},
		{"-9223372036854775808.0", types.MeasureValueTypeBigint, "-9223372036854775808"},
		{"1e19", types.MeasureValueTypeBigint, "1e19"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, formatValue(jsonNumber(tc.literal), tc.valueType), tc.literal)
	}
}
