package event_bus

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceCreated   EventType = "invoice.created"
	InvoicePaid      EventType = "invoice.paid"
	InvoiceDeleted   EventType = "invoice.deleted"
	InvoiceVoided    EventType = "invoice.voided"
	TimeSpanRecorded EventType = "time_span.recorded"
)

// InvoiceActivities is the payload of every invoice lifecycle event. ActivityIds
// lists the activities linked to the invoice through its lines.
type InvoiceActivities struct {
	InvoiceId   int
	Number      string
	ClientId    int
	Total       decimal.Decimal
	ActivityIds []int
}

type TimeSpanClosed struct {
	SpanId          string
	ActivityId      int
	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
}
