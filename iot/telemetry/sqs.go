package telemetry

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/relabs-tech/vibecloud/core/logger"
)

// HandleSQS handles telemetry events delivered through an SQS queue, one event per
// message body. Messages whose event could not be written are returned as batch item
// failures so that only those are redelivered. Events without recognised measures are
// not failures.
func (h *Handler) HandleSQS(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	ctx, rlog := logger.ContextWithLogger(ctx)

	var resp events.SQSEventResponse
	for _, msg := range event.Records {
		if _, err := h.Handle(ctx, json.RawMessage(msg.Body)); err != nil {
			rlog.WithField("messageId", msg.MessageId).WithError(err).Warn("telemetry message failed")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: msg.MessageId,
			})
		}
	}
	rlog.Infof("handled %d messages, %d failed", len(event.Records), len(resp.BatchItemFailures))
	return resp, nil
}
