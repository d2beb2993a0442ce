package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMalformedRecord   = errors.New("malformed record")
	ErrNoSalesInRange    = errors.New("no sales in range")
	ErrDataSourceTimeout = errors.New("data source timeout")
	ErrInvalidDateRange  = errors.New("invalid date range")
)

// MalformedRecordError describes a raw row that was skipped during
// normalization. It is never fatal to the batch.
type MalformedRecordError struct {
	Row    int
	Field  string
	Value  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %s", e.Row, e.Field, e.Value, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// NoSalesInRangeError is attached to a reconciliation result as a warning
// when the range holds no sales revenue.
type NoSalesInRangeError struct {
	Range DateRange
}

func (e *NoSalesInRangeError) Error() string {
	return fmt.Sprintf("no sales between %s and %s", e.Range.Start.Format(DateLayout), e.Range.End.Format(DateLayout))
}

func (e *NoSalesInRangeError) Unwrap() error { return ErrNoSalesInRange }

// DataSourceTimeoutError aborts a single report request.
type DataSourceTimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *DataSourceTimeoutError) Error() string {
	return fmt.Sprintf("data source %s timed out after %s", e.Operation, e.Timeout)
}

func (e *DataSourceTimeoutError) Unwrap() error { return ErrDataSourceTimeout }

// InvalidDateRangeError is returned when start > end.
type InvalidDateRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("start %s is after end %s", e.Start.Format(DateLayout), e.End.Format(DateLayout))
}

func (e *InvalidDateRangeError) Unwrap() error { return ErrInvalidDateRange }
