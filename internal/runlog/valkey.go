package runlog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	valkeygo "github.com/valkey-io/valkey-go"

	"storyspoiler-e2e/internal/scenario"
)

// DefaultStream is the stream finished steps are appended to.
const DefaultStream = "storyspoiler:runs"

// writeTimeout bounds each XADD so a slow ledger never stalls the suite.
const writeTimeout = 5 * time.Second

// ValkeyLedger appends every finished step to a Valkey stream. Write
// failures are logged, never returned: the ledger must not change the
// outcome of a scenario.
type ValkeyLedger struct {
	client valkeygo.Client
	stream string
	logger zerolog.Logger
}

// NewValkeyClient connects to addr and checks it with a PING.
func NewValkeyClient(ctx context.Context, addr string) (valkeygo.Client, error) {
	client, err := valkeygo.NewClient(valkeygo.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect valkey %s: %w", addr, err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey %s: %w", addr, err)
	}

	return client, nil
}

// NewValkeyLedger writes to stream using client. An empty stream selects
// DefaultStream. The caller owns the client.
func NewValkeyLedger(client valkeygo.Client, stream string, logger zerolog.Logger) *ValkeyLedger {
	if stream == "" {
		stream = DefaultStream
	}
	return &ValkeyLedger{client: client, stream: stream, logger: logger}
}

// Stream returns the stream name.
func (l *ValkeyLedger) Stream() string {
	return l.stream
}

func (l *ValkeyLedger) StepStarted(string, int, scenario.Step) {}

func (l *ValkeyLedger) StepFinished(runID string, res scenario.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}

	cmd := l.client.B().Xadd().
		Key(l.stream).
		Id("*").
		FieldValue().
		FieldValue("run_id", runID).
		FieldValue("index", strconv.Itoa(res.Index)).
		FieldValue("step", res.Step).
		FieldValue("status", Status(res)).
		FieldValue("error", errText).
		FieldValue("duration_ms", strconv.FormatInt(res.Duration.Milliseconds(), 10)).
		Build()

	if err := l.client.Do(ctx, cmd).Error(); err != nil {
		l.logger.Warn().
			Err(err).
			Str("stream", l.stream).
			Str("step", res.Step).
			Msg("failed to record step in valkey")
	}
}

// Entry is one recorded step read back from the stream.
type Entry struct {
	ID         string
	RunID      string
	Index      int
	Step       string
	Status     string
	Error      string
	DurationMS int64
}

// Entries returns the recorded steps of runID in stream order.
func (l *ValkeyLedger) Entries(ctx context.Context, runID string) ([]Entry, error) {
	msgs, err := l.client.Do(ctx, l.client.B().Xrange().Key(l.stream).Start("-").End("+").Build()).AsXRange()
	if err != nil {
		return nil, fmt.Errorf("xrange %s: %w", l.stream, err)
	}

	var entries []Entry
	for _, m := range msgs {
		if m.FieldValues["run_id"] != runID {
			continue
		}

		index, _ := strconv.Atoi(m.FieldValues["index"])
		duration, _ := strconv.ParseInt(m.FieldValues["duration_ms"], 10, 64)

		entries = append(entries, Entry{
			ID:         m.ID,
			RunID:      runID,
			Index:      index,
			Step:       m.FieldValues["step"],
			Status:     m.FieldValues["status"],
			Error:      m.FieldValues["error"],
			DurationMS: duration,
		})
	}

	return entries, nil
}
