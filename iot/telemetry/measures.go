package telemetry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"
	"github.com/goccy/go-json"
)

// DimensionDeviceID is the name of the only dimension of every record
const DimensionDeviceID = "device_id"

// Group is the name of the object in the event which holds a measure
type Group string

// The measure groups of a telemetry event
const (
	GroupVibration Group = "vibration"
	GroupHealth    Group = "health"
)

// Measure describes one recognised field of a telemetry event
type Measure struct {
	Group Group
	Name  string
	Type  types.MeasureValueType
}

// Measures is the list of recognised fields, in record order. Fields of an event which
// are not listed here are ignored.
var Measures = []Measure{
	{GroupVibration, "rms_g", types.MeasureValueTypeDouble},
	{GroupVibration, "peak_g", types.MeasureValueTypeDouble},
	{GroupHealth, "battery_v", types.MeasureValueTypeDouble},
	{GroupHealth, "temp_c", types.MeasureValueTypeDouble},
	{GroupHealth, "imu_temp_c", types.MeasureValueTypeDouble},
	{GroupHealth, "rssi_dbm", types.MeasureValueTypeBigint},
	{GroupHealth, "uptime_sec", types.MeasureValueTypeBigint},
	{GroupHealth, "free_heap", types.MeasureValueTypeBigint},
}

// Dimension is an indexed label of a record
type Dimension struct {
	Name  string
	Value string
}

// Record is one measure of one device at one point in time
type Record struct {
	MeasureName      string
	MeasureValue     string
	MeasureValueType types.MeasureValueType
	Time             string
	TimeUnit         types.TimeUnit
	Dimensions       []Dimension
}

// BuildRecords returns one record for every recognised measure present in ev. A measure
// is present if it exists and is not null, zero is a value like any other. If ev has
// no timestamp, now is used.
//
// Values are not validated here. A value which does not fit the measure type is passed
// on as text and rejected by the store.
func BuildRecords(ev Event, now time.Time) []Record {
	ts := now.Unix()
	if ev.Timestamp != nil {
		ts = *ev.Timestamp
	}
	recordTime := strconv.FormatInt(ts, 10)
	dimensions := []Dimension{{Name: DimensionDeviceID, Value: ev.DeviceID}}

	var records []Record
	for _, m := range Measures {
		v, ok := ev.values(m.Group)[m.Name]
		if !ok || v == nil {
			continue
		}
		records = append(records, Record{
			MeasureName:      m.Name,
			MeasureValue:     formatValue(v, m.Type),
			MeasureValueType: m.Type,
			Time:             recordTime,
			TimeUnit:         types.TimeUnitSeconds,
			Dimensions:       dimensions,
		})
	}
	return records
}

func (ev Event) values(g Group) map[string]interface{} {
	switch g {
	case GroupVibration:
		return ev.Vibration
	case GroupHealth:
		return ev.Health
	}
	return nil
}

// formatValue prints numbers for their measure type, strings as they are and anything
// else as JSON
func formatValue(v interface{}, t types.MeasureValueType) string {
	switch value := v.(type) {
	case json.Number:
		if t == types.MeasureValueTypeBigint {
			return formatBigint(value)
		}
		return formatDouble(value)
	case string:
		return value
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}
		return string(b)
	}
}

// formatDouble keeps integer literals as they are and prints other numbers in their
// shortest form with a fractional part
func formatDouble(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return n.String()
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatBigint prints integral numbers as integers. Other numbers keep their literal.
func formatBigint(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f != math.Trunc(f) || !fitsInt64(f) {
		return n.String()
	}
	return strconv.FormatInt(int64(f), 10)
}

// fitsInt64 reports whether f converts to int64 without overflow. float64(math.MaxInt64)
// rounds up to 2^63, so the upper bound is exclusive.
func fitsInt64(f float64) bool {
	return f >= math.MinInt64 && f < math.MaxInt64
}
