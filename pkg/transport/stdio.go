// Package transport provides the stdio and SSE transports that feed raw
// messages to the engine. Transports own framing and connection lifecycle
// only; all protocol semantics live in the server package.
package transport

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	mcperrors "github.com/modelctx/mcp-go/pkg/errors"
	"github.com/modelctx/mcp-go/pkg/logging"
	"github.com/modelctx/mcp-go/pkg/server"
)

// maxLineSize bounds one newline-delimited message read from stdin.
const maxLineSize = 4 * 1024 * 1024

// StdioConfig configures a StdioTransport. Reader and Writer exist for
// testing; they default to os.Stdin and os.Stdout.
type StdioConfig struct {
	Reader io.Reader
	Writer io.Writer
	Logger logging.Logger
}

// StdioTransport serves the engine over newline-delimited JSON on standard
// input and output. Diagnostics must go to stderr; stdout carries protocol
// frames only.
type StdioTransport struct {
	engine *server.Server
	reader io.Reader
	writer *bufio.Writer
	logger logging.Logger

	// writeMu serializes response frames so concurrent handlers can never
	// interleave bytes on stdout.
	writeMu sync.Mutex
}

// NewStdioTransport creates a stdio transport around an engine.
func NewStdioTransport(engine *server.Server, config StdioConfig) *StdioTransport {
	if config.Reader == nil {
		config.Reader = os.Stdin
	}
	if config.Writer == nil {
		config.Writer = os.Stdout
	}
	if config.Logger == nil {
		config.Logger = logging.New(nil, nil)
	}

	return &StdioTransport{
		engine: engine,
		reader: config.Reader,
		writer: bufio.NewWriter(config.Writer),
		logger: config.Logger.WithFields(logging.String("component", "stdio")),
	}
}

// Serve reads messages line by line until EOF or context cancellation.
// EOF is a clean shutdown and returns nil. Malformed lines are answered
// in-stream with a parse error; they never terminate the loop.
func (t *StdioTransport) Serve(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	scanner := bufio.NewScanner(t.reader)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	scannerDone := make(chan struct{})

	g.Go(func() error {
		defer close(scannerDone)

		for scanner.Scan() {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			// Copy before the next Scan overwrites the buffer.
			data := make([]byte, len(line))
			copy(data, line)

			resp := t.engine.HandleMessage(gctx, data)
			if resp == nil {
				continue
			}
			if err := t.writeFrame(resp); err != nil {
				return mcperrors.TransportError("stdio", "write", err)
			}
		}

		if err := scanner.Err(); err != nil && err != io.EOF {
			// A read error caused by our own shutdown closing the reader
			// is not a transport fault.
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return mcperrors.TransportError("stdio", "read", err)
		}

		t.logger.Info("input closed, shutting down")
		return nil
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			// Unblock scanner.Scan() when the reader supports it.
			if closer, ok := t.reader.(io.Closer); ok {
				_ = closer.Close()
			}
			return gctx.Err()
		case <-scannerDone:
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (t *StdioTransport) writeFrame(data []byte) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.writer.Write(data); err != nil {
		return err
	}
	if err := t.writer.WriteByte('\n'); err != nil {
		return err
	}
	return t.writer.Flush()
}
