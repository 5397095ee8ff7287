package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/relabs-tech/vibecloud/core/archive"
	"github.com/relabs-tech/vibecloud/core/logger"
)

// RecordWriter writes all records of one event in a single call
type RecordWriter interface {
	WriteRecords(ctx context.Context, records []Record) error
}

// Response is returned to the invoking runtime
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Handler converts telemetry events into time series records
type Handler struct {
	writer  RecordWriter
	archive archive.Driver
	now     func() time.Time
}

// Builder is a builder helper for the Handler
type Builder struct {
	// Writer receives the records of every event. This is mandatory.
	Writer RecordWriter
	// Archive stores the raw event before it is written. This is optional.
	Archive archive.Driver
	// Now is the clock for events without timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewHandler returns a new Handler
func NewHandler(b *Builder) *Handler {
	if b.Writer == nil {
		panic("Writer is missing")
	}
	now := b.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{writer: b.Writer, archive: b.Archive, now: now}
}

// Handle writes the records of one event. Events without any recognised measure
// produce a 400 response and no write. A failed write is returned as error, so that the
// invocation fails and the runtime applies its retry policy.
func (h *Handler) Handle(ctx context.Context, payload json.RawMessage) (Response, error) {
	ctx, rlog := logger.ContextWithLogger(ctx)

	ev, err := DecodeEvent(payload)
	if err != nil {
		rlog.WithError(err).Error("invalid telemetry event")
		return Response{}, err
	}
	ctx, rlog = logger.ContextWithLoggerDevice(ctx, ev.DeviceID)

	records := BuildRecords(ev, h.now())

	h.store(ctx, ev, payload)

	if len(records) == 0 {
		rlog.Info("No valid records to write")
		return response(http.StatusBadRequest, "No valid records"), nil
	}

	if err := h.writer.WriteRecords(ctx, records); err != nil {
		rlog.WithError(err).Errorf("cannot write %d records", len(records))
		return Response{}, fmt.Errorf("request %s: cannot write %d records: %w",
			logger.RequestIDFromContext(ctx), len(records), err)
	}
	rlog.WithField("records", len(records)).Info("records written")
	return response(http.StatusOK, fmt.Sprintf("Wrote %d records", len(records))), nil
}

// store archives the raw event. Failures are logged only.
func (h *Handler) store(ctx context.Context, ev Event, payload []byte) {
	if h.archive == nil {
		return
	}
	ts := h.now().Unix()
	if ev.Timestamp != nil {
		ts = *ev.Timestamp
	}
	key := fmt.Sprintf("%s/%d.json", ev.DeviceID, ts)
	if err := h.archive.Store(ctx, key, payload); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("cannot archive telemetry event")
	}
}

// response encodes message as a JSON string body
func response(statusCode int, message string) Response {
	body, _ := json.Marshal(message)
	return Response{StatusCode: statusCode, Body: string(body)}
}
