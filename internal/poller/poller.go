package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/jpalmerr/syncboard/table"
)

// Feed describes one endpoint and how to turn its body into table rows.
//
// Feed is the parameterization of the shared poll contract: the endpoint,
// the expected shape (Decode) and the row renderer (Render).
type Feed[T any] struct {
	// Name identifies the poller in logs and failures.
	Name string

	// URL is the absolute endpoint URL.
	URL string

	// Headers are sent with every request.
	Headers map[string]string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// Decode turns a 2xx body into records. Returning an error marks the
	// cycle as a decode failure.
	Decode func(body []byte) ([]T, error)

	// Render turns one record into a row.
	Render func(T) table.Row
}

// Result is the outcome of one poll cycle.
type Result struct {
	Poller    string
	URL       string
	Rows      int
	Latency   time.Duration
	CheckedAt time.Time

	// Failure is nil when the table was re-rendered.
	Failure *Failure
}

// Poller runs poll cycles for a single [Feed] against a single [table.Sink].
//
// Each cycle is fetch, decode, render. On success the sink is replaced
// wholesale; on any failure the sink is not touched. Renders of the same
// Poller are serialized, so overlapping cycles land in completion order and
// never interleave their rows.
type Poller[T any] struct {
	feed   Feed[T]
	sink   table.Sink
	client *Client
	clock  clock.Clock
	logger *slog.Logger

	renderMu sync.Mutex
}

// New creates a [Poller] for feed that renders into sink.
func New[T any](feed Feed[T], sink table.Sink, client *Client, clk clock.Clock, logger *slog.Logger) *Poller[T] {
	return &Poller[T]{
		feed:   feed,
		sink:   sink,
		client: client,
		clock:  clk,
		logger: logger,
	}
}

// Name returns the feed name.
func (p *Poller[T]) Name() string {
	return p.feed.Name
}

// Poll runs one cycle and returns its [Result].
//
// Poll never panics and never returns an error directly; failures are
// carried in Result.Failure.
func (p *Poller[T]) Poll(ctx context.Context) Result {
	resp := p.client.Fetch(ctx, p.feed.URL, p.feed.Headers, p.feed.Timeout)

	result := Result{
		Poller:    p.feed.Name,
		URL:       p.feed.URL,
		Latency:   resp.Latency,
		CheckedAt: p.clock.Now(),
	}

	if resp.Error != nil {
		kind := FailureTransport
		if errors.Is(resp.Error, ErrBodyTooLarge) {
			kind = FailureDecode
		}
		result.Failure = p.failure(kind, resp.StatusCode, resp.Error)
		return result
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Failure = p.failure(FailureStatus, resp.StatusCode,
			fmt.Errorf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
		return result
	}

	records, err := p.feed.Decode(resp.Body)
	if err != nil {
		result.Failure = p.failure(FailureDecode, resp.StatusCode, err)
		return result
	}

	n, err := p.safeRender(records)
	if err != nil {
		result.Failure = p.failure(FailureRender, resp.StatusCode, err)
		return result
	}

	result.Rows = n
	return result
}

// safeRender builds every row before touching the sink, then replaces the
// sink under the render lock. A panic in a renderer or sink is recovered,
// logged with a correlation ID, and returned as an error.
func (p *Poller[T]) safeRender(records []T) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()

			p.logger.Error("render panic",
				"poller", p.feed.Name,
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)

			n = 0
			err = fmt.Errorf("render panic (correlation_id: %s)", correlationID)
		}
	}()

	rows := make([]table.Row, len(records))
	for i, rec := range records {
		rows[i] = p.feed.Render(rec)
	}

	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	table.Replace(p.sink, rows)

	return len(rows), nil
}

func (p *Poller[T]) failure(kind FailureKind, statusCode int, err error) *Failure {
	return &Failure{
		Poller:     p.feed.Name,
		URL:        p.feed.URL,
		Kind:       kind,
		StatusCode: statusCode,
		At:         p.clock.Now(),
		Err:        err,
	}
}
