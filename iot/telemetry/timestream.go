package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite"
	"github.com/aws/aws-sdk-go-v2/service/timestreamwrite/types"
	"github.com/relabs-tech/vibecloud/core/logger"
)

// TimestreamAPI is the part of the Timestream write API used by TimestreamWriter. It is
// satisfied by *timestreamwrite.Client.
type TimestreamAPI interface {
	WriteRecords(ctx context.Context, params *timestreamwrite.WriteRecordsInput, optFns ...func(*timestreamwrite.Options)) (*timestreamwrite.WriteRecordsOutput, error)
}

// TimestreamWriter writes records into one Timestream table
type TimestreamWriter struct {
	client   TimestreamAPI
	database string
	table    string
}

// NewTimestreamWriter returns a new TimestreamWriter for database and table
func NewTimestreamWriter(client TimestreamAPI, database, table string) *TimestreamWriter {
	if client == nil {
		panic("Timestream client is missing")
	}
	if database == "" || table == "" {
		panic("Timestream database and table are mandatory")
	}
	return &TimestreamWriter{client: client, database: database, table: table}
}

// WriteRecords writes all records in one WriteRecords call. Partial rejects by
// Timestream are returned as error.
func (w *TimestreamWriter) WriteRecords(ctx context.Context, records []Record) error {
	out, err := w.client.WriteRecords(ctx, &timestreamwrite.WriteRecordsInput{
		DatabaseName: aws.String(w.database),
		TableName:    aws.String(w.table),
		Records:      toTimestream(records),
	})
	if err != nil {
		var rejected *types.RejectedRecordsException
		if errors.As(err, &rejected) {
			return fmt.Errorf("%s.%s rejected records %s: %w", w.database, w.table, rejectReasons(rejected), err)
		}
		return fmt.Errorf("cannot write to %s.%s: %w", w.database, w.table, err)
	}
	if out != nil && out.RecordsIngested != nil {
		logger.FromContext(ctx).Debugf("Timestream ingested %d records", out.RecordsIngested.Total)
	}
	return nil
}

func toTimestream(records []Record) []types.Record {
	result := make([]types.Record, 0, len(records))
	for _, r := range records {
		dimensions := make([]types.Dimension, 0, len(r.Dimensions))
		for _, d := range r.Dimensions {
			dimensions = append(dimensions, types.Dimension{
				Name:  aws.String(d.Name),
				Value: aws.String(d.Value),
			})
		}
		result = append(result, types.Record{
			MeasureName:      aws.String(r.MeasureName),
			MeasureValue:     aws.String(r.MeasureValue),
			MeasureValueType: r.MeasureValueType,
			Time:             aws.String(r.Time),
			TimeUnit:         r.TimeUnit,
			Dimensions:       dimensions,
		})
	}
	return result
}

func rejectReasons(e *types.RejectedRecordsException) string {
	reasons := make([]string, 0, len(e.RejectedRecords))
	for _, r := range e.RejectedRecords {
		reasons = append(reasons, fmt.Sprintf("[%d: %s]", r.RecordIndex, aws.ToString(r.Reason)))
	}
	return strings.Join(reasons, " ")
}
