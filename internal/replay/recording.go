package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/strafe/internal/game/sim"
	"github.com/Faultbox/strafe/internal/movement"
)

// FormatVersion is the recording format written by this package.
const FormatVersion = 1

// ErrUnsupportedVersion is returned for recordings of an unknown format.
var ErrUnsupportedVersion = errors.New("unsupported recording version")

// Header describes a run. It pins everything verification needs besides the
// inputs: the map, the seed and the exact tuning.
type Header struct {
	Version    int             `json:"version"`
	MapID      string          `json:"map_id"`
	MapDigest  string          `json:"map_digest"`
	Player     string          `json:"player"`
	Seed       uint32          `json:"seed"`
	Tuning     movement.Tuning `json:"tuning"`
	Ticks      int             `json:"ticks"`
	Finished   bool            `json:"finished"`
	FinishTick uint64          `json:"finish_tick,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Frame is one tick: the input applied and the digest after it.
type Frame struct {
	Tick   uint64    `json:"tick"`
	Input  sim.Input `json:"in"`
	Digest string    `json:"digest"`
}

// Recording is a header plus one frame per tick.
type Recording struct {
	Header Header
	Frames []Frame
}

// FinalDigest returns the digest of the last frame.
func (r *Recording) FinalDigest() string {
	if len(r.Frames) == 0 {
		return ""
	}
	return r.Frames[len(r.Frames)-1].Digest
}

// Inputs returns the recorded inputs in tick order.
func (r *Recording) Inputs() []sim.Input {
	in := make([]sim.Input, len(r.Frames))
	for i, f := range r.Frames {
		in[i] = f.Input
	}
	return in
}

// Writer streams a recording as zstd-compressed JSON lines: the header on
// the first line, then one frame per line.
type Writer struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create opens path for writing and writes the header.
func Create(path string, h Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating recording dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating recording: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating encoder: %w", err)
	}
	w := &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}
	if err := w.writeLine(h); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// WriteFrame appends one frame.
func (w *Writer) WriteFrame(fr Frame) error {
	return w.writeLine(fr)
}

func (w *Writer) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes and closes the file.
func (w *Writer) Close() error {
	var firstErr error
	if w.w != nil {
		firstErr = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		if err := w.enc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.enc = nil
	}
	if w.f != nil {
		if err := w.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.f = nil
	}
	return firstErr
}

// Save writes a whole recording to path.
func Save(path string, rec *Recording) error {
	w, err := Create(path, rec.Header)
	if err != nil {
		return err
	}
	for _, fr := range rec.Frames {
		if err := w.WriteFrame(fr); err != nil {
			_ = w.Close()
			return fmt.Errorf("writing frame %d: %w", fr.Tick, err)
		}
	}
	return w.Close()
}

// Read loads a recording from path.
func Read(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a zstd-compressed recording stream.
func Decode(r io.Reader) (*Recording, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading header: %w", err)
		}
		return nil, errors.New("empty recording")
	}
	var rec Recording
	if err := json.Unmarshal(sc.Bytes(), &rec.Header); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	if rec.Header.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Header.Version)
	}
	if rec.Header.Ticks < 0 {
		return nil, fmt.Errorf("negative tick count %d", rec.Header.Ticks)
	}
	rec.Frames = make([]Frame, 0, min(rec.Header.Ticks, 1<<16))
	for sc.Scan() {
		var fr Frame
		if err := json.Unmarshal(sc.Bytes(), &fr); err != nil {
			return nil, fmt.Errorf("decoding frame %d: %w", len(rec.Frames)+1, err)
		}
		rec.Frames = append(rec.Frames, fr)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading frames: %w", err)
	}
	return &rec, nil
}
