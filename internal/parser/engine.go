// Package parser turns a conversation log into ordered turn candidates
// without holding more than one chunk plus a partial line in memory.
package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iPoetDev/browsechat-sub001/internal/marker"
	"github.com/iPoetDev/browsechat-sub001/internal/metadata"
	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

// Options bound a single parse.
type Options struct {
	// Marker is the line prefix that opens a turn.
	Marker string
	// MaxFileSize rejects files before any content is read.
	MaxFileSize int64
	// ChunkSize is the read window; boundary detection never needs more
	// than one window plus the carry-over of a partial line.
	ChunkSize int
	// ParseTimeout is the wall-clock budget for the whole parse, checked
	// at each chunk boundary.
	ParseTimeout time.Duration
}

// DefaultOptions returns the stock limits: marker "Me", 10 MiB max file,
// 1 MiB chunks, 5s timeout.
func DefaultOptions() Options {
	return Options{
		Marker:       marker.DefaultToken,
		MaxFileSize:  10 << 20,
		ChunkSize:    1 << 20,
		ParseTimeout: 5 * time.Second,
	}
}

// Turn is a raw turn candidate: the unsanitized slice boundaries, the
// sanitized content, and the metadata extracted from the raw text.
type Turn struct {
	StartIndex int64
	EndIndex   int64
	Raw        string
	Content    string
	Metadata   types.Metadata
}

// Engine is the streaming segmentation engine. One Engine may be shared;
// each parse call keeps its own state.
type Engine struct {
	opts Options
}

// New creates an Engine. Zero-valued options fall back to defaults.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Marker == "" {
		opts.Marker = def.Marker
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = def.MaxFileSize
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.ParseTimeout <= 0 {
		opts.ParseTimeout = def.ParseTimeout
	}
	return &Engine{opts: opts}
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// ParseFile validates the source by size, then streams it through the
// boundary detector. HTML sources are converted to plain text first.
// The file handle is released before any error propagates.
func (e *Engine) ParseFile(ctx context.Context, path string) ([]Turn, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrEmptyFile, path)
	}
	if info.Size() > e.opts.MaxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", types.ErrFileTooLarge, path, info.Size(), e.opts.MaxFileSize)
	}

	if IsHTMLPath(path) {
		text, err := normalizeHTMLFile(path, e.opts.MaxFileSize)
		if err != nil {
			return nil, err
		}
		return e.Parse(ctx, strings.NewReader(text))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	turns, parseErr := e.parse(ctx, f)
	closeErr := f.Close()
	if parseErr != nil {
		return nil, parseErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to parse file: %w", closeErr)
	}
	return turns, nil
}

// Parse segments a raw byte stream. Size validation is the caller's concern;
// the chunk-size and timeout limits still apply.
func (e *Engine) Parse(ctx context.Context, r io.Reader) ([]Turn, error) {
	return e.parse(ctx, r)
}

// openTurn tracks the turn currently being accumulated.
type openTurn struct {
	start int64
	raw   strings.Builder
}

func (e *Engine) parse(ctx context.Context, r io.Reader) ([]Turn, error) {
	deadline := time.Now().Add(e.opts.ParseTimeout)
	buf := make([]byte, e.opts.ChunkSize)

	var turns []Turn
	var open *openTurn
	// carry is the trailing, possibly incomplete line of the previous
	// chunk; cursor is the absolute offset of its first byte.
	var carry string
	var cursor int64

	finalize := func(end int64) {
		raw := open.raw.String()
		turns = append(turns, Turn{
			StartIndex: open.start,
			EndIndex:   end,
			Raw:        raw,
			Content:    marker.Sanitize(raw),
			Metadata:   metadata.Extract(raw),
		})
		open = nil
	}

	// handleLine consumes one complete or final line starting at the
	// absolute offset lineStart.
	handleLine := func(line string, lineStart int64) {
		if marker.IsBoundary(line, e.opts.Marker) {
			if open != nil {
				finalize(lineStart)
			}
			open = &openTurn{start: lineStart}
			open.raw.WriteString(line)
			return
		}
		if open != nil {
			open.raw.WriteByte('\n')
			open.raw.WriteString(line)
		}
		// Lines before the first marker are preamble and are discarded.
	}

	for {
		// Timeout and cancellation are cooperative, checked once per
		// read. Checking before the read keeps a reader that returns
		// (0, nil) forever from pinning the parse past its deadline.
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w after %s", types.ErrParseTimeout, e.opts.ParseTimeout)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("failed to parse file: %w", err)
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			text := carry + string(buf[:n])
			parts := strings.Split(text, "\n")
			// The final element may be an incomplete line; it becomes
			// the new carry-over instead of being treated as data.
			for _, line := range parts[:len(parts)-1] {
				handleLine(line, cursor)
				cursor += int64(len(line)) + 1
			}
			carry = parts[len(parts)-1]
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to parse file: %w", readErr)
		}
	}

	// The final carry-over is a real line (no trailing newline).
	if carry != "" {
		handleLine(carry, cursor)
		cursor += int64(len(carry))
	}
	if open != nil {
		finalize(cursor)
	}
	return turns, nil
}
