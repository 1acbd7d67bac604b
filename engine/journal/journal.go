// Package journal writes the simulation event stream as zstd-compressed
// JSON lines, one record per event, for post-match analysis.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/hexforge/rts-core/engine/sim"
)

// Record is one journaled event.
type Record struct {
	Tick    uint64      `json:"tick"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	WallTS  string      `json:"ts"`
}

// Writer appends records to a single compressed file per run.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewWriter creates the journal file under baseDir, named by start time.
func NewWriter(baseDir, prefix string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.jsonl.zst", prefix, time.Now().UTC().Format("20060102-150405"))
	f, err := os.Create(filepath.Join(baseDir, name))
	if err != nil {
		return nil, fmt.Errorf("journal file: %w", err)
	}
	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return &Writer{f: f, enc: enc, w: bufio.NewWriter(enc)}, nil
}

// Attach subscribes the writer to every event on a bus. The journal is
// best effort: write errors are dropped rather than stalling the tick.
func (jw *Writer) Attach(bus *sim.EventBus) {
	bus.OnAll(func(e sim.Event) {
		_ = jw.Write(Record{
			Tick:    e.Tick,
			Type:    e.Type.String(),
			Payload: e.Payload,
			WallTS:  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

// Write appends one record.
func (jw *Writer) Write(r Record) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	if jw.w == nil {
		return fmt.Errorf("journal closed")
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := jw.w.Write(b); err != nil {
		return err
	}
	return jw.w.WriteByte('\n')
}

// Close flushes and closes the journal.
func (jw *Writer) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	if jw.w == nil {
		return nil
	}
	var first error
	if err := jw.w.Flush(); err != nil {
		first = err
	}
	if err := jw.enc.Close(); err != nil && first == nil {
		first = err
	}
	if err := jw.f.Close(); err != nil && first == nil {
		first = err
	}
	jw.w = nil
	return first
}

// ReadAll decodes a journal file back into records, oldest first. Used by
// analysis tooling and tests.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	defer dec.Close()

	var out []Record
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			return nil, fmt.Errorf("bad record: %w", err)
		}
		out = append(out, r)
	}
	return out, sc.Err()
}
