package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/content-client/pkg/client"
	"github.com/Sternrassler/content-client/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultReportTimeout bounds a single analytics submission.
const DefaultReportTimeout = 10 * time.Second

// ReportFunc delivers one analytics event, e.g. (*client.Client).ReportAnalytics.
type ReportFunc func(ctx context.Context, event client.AnalyticsEvent) error

// Reporter submits analytics events in the background.
//
// Report never blocks and never fails from the caller's point of view:
// delivery errors are logged at warn level and counted. A nil *Reporter is
// valid and drops every event.
type Reporter struct {
	send    ReportFunc
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

// NewReporter creates a Reporter. A timeout <= 0 uses DefaultReportTimeout.
func NewReporter(send ReportFunc, timeout time.Duration) *Reporter {
	if timeout <= 0 {
		timeout = DefaultReportTimeout
	}
	return &Reporter{
		send:    send,
		timeout: timeout,
		logger:  logging.NewLogger("analytics"),
	}
}

// Report submits event without waiting for the outcome.
func (r *Reporter) Report(event client.AnalyticsEvent) {
	if r == nil || r.send == nil {
		return
	}

	analyticsReportsTotal.Inc()
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		var err error
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
			if err != nil {
				analyticsFailuresTotal.Inc()
				r.logger.Warn().
					Err(err).
					Str("type", event.Type).
					Msg("Analytics event not delivered")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		err = r.send(ctx, event)
	}()
}

// Wait blocks until every submitted event has been delivered or dropped.
func (r *Reporter) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
