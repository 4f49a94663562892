// Package source reads and writes events as JSON Lines: one event object
// per line.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/dimu/internal/event"
)

// maxLineBytes bounds one encoded event. Events with MC stacks can be large.
const maxLineBytes = 64 << 20

// DecodeError reports a malformed line.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Reader decodes events from JSON Lines input. Blank lines are ignored.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	strict  bool
	skipped int
	logger  *slog.Logger
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// Strict makes malformed lines fatal. By default they are logged and
// skipped.
func Strict() ReaderOption {
	return func(r *Reader) {
		r.strict = true
	}
}

// WithLogger sets the logger for skipped lines. Default: slog.Default().
func WithLogger(l *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = l
	}
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	rd := &Reader{scanner: s, logger: slog.Default()}
	for _, opt := range opts {
		opt(rd)
	}
	return rd
}

// Next returns the next event, or io.EOF at the end of input.
func (r *Reader) Next() (*event.Event, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}
		var ev event.Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			derr := &DecodeError{Line: r.line, Err: err}
			if r.strict {
				return nil, derr
			}
			r.skipped++
			r.logger.Warn("skipping malformed event", "line", r.line, "error", err)
			continue
		}
		return &ev, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return nil, io.EOF
}

// Skipped returns the number of malformed lines skipped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ReadAll decodes every remaining event.
func (r *Reader) ReadAll() ([]*event.Event, error) {
	var out []*event.Event
	for {
		ev, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, ev)
	}
}

// Writer encodes events as JSON Lines.
type Writer struct {
	enc *json.Encoder
}

// NewWriter returns a Writer to w.
func NewWriter(w io.Writer) *Writer {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &Writer{enc: enc}
}

// Write encodes one event followed by a newline.
func (w *Writer) Write(ev *event.Event) error {
	if err := w.enc.Encode(ev); err != nil {
		return fmt.Errorf("write event %d/%d: %w", ev.Run, ev.Number, err)
	}
	return nil
}

// Slice yields a fixed list of events.
type Slice struct {
	events []*event.Event
	next   int
}

// FromSlice returns a source over events.
func FromSlice(events ...*event.Event) *Slice {
	return &Slice{events: events}
}

// Next returns the next event, or io.EOF.
func (s *Slice) Next() (*event.Event, error) {
	if s.next >= len(s.events) {
		return nil, io.EOF
	}
	ev := s.events[s.next]
	s.next++
	return ev, nil
}
