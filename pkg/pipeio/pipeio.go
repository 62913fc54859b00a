// Package pipeio moves data between a WebSocket connection and a byte
// stream such as the terminal.
package pipeio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"dominicbreuker/wsconnect/pkg/handshake"

	"github.com/muesli/cancelreader"
	"golang.org/x/sync/errgroup"
)

// MaxLine is the longest stdin line sent as a single text message.
const MaxLine = 1 << 20

// Framing selects how the byte stream is cut into messages.
type Framing int

const (
	// FramingLines sends each line as a text message without its newline and
	// prints received messages followed by a newline.
	FramingLines Framing = iota
	// FramingBinary sends each read chunk as a binary message and prints
	// received payloads as they are.
	FramingBinary
)

// Options controls a Pipe session.
type Options struct {
	Framing Framing
	// Linger keeps receiving for this long after rwc reached end of input,
	// like netcat's -q. Zero ends the session right away.
	Linger time.Duration
}

// Pipe copies rwc to conn and conn to rwc until one side is done, then
// closes both. End of input on rwc and an orderly close by the peer are
// not errors.
func Pipe(ctx context.Context, conn handshake.Conn, rwc io.ReadWriteCloser, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		if err := send(ctx, conn, rwc, opts.Framing); err != nil {
			return fmt.Errorf("sending: %w", err)
		}
		if opts.Linger > 0 {
			timer := time.NewTimer(opts.Linger)
			defer timer.Stop()
			select {
			case <-ctx.Done():
			case <-timer.C:
			}
		}
		return nil
	})

	g.Go(func() error {
		defer cancel()
		if err := receive(ctx, conn, rwc, opts.Framing); err != nil {
			return fmt.Errorf("receiving: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		_ = rwc.Close()
		_ = conn.Close()
		return nil
	})

	return g.Wait()
}

func send(ctx context.Context, conn handshake.Conn, r io.Reader, framing Framing) error {
	if framing == FramingBinary {
		buf := make([]byte, 32*1024)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				if werr := conn.WriteMessage(ctx, handshake.MessageBinary, buf[:n]); werr != nil {
					return ignoreDone(ctx, werr)
				}
			}
			if err != nil {
				return ignoreEOF(ctx, err)
			}
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLine)
	for sc.Scan() {
		if err := conn.WriteMessage(ctx, handshake.MessageText, sc.Bytes()); err != nil {
			return ignoreDone(ctx, err)
		}
	}
	return ignoreEOF(ctx, sc.Err())
}

func receive(ctx context.Context, conn handshake.Conn, w io.Writer, framing Framing) error {
	for {
		_, data, err := conn.ReadMessage(ctx)
		if err != nil {
			if handshake.IsNormalClose(err) {
				return nil
			}
			return ignoreDone(ctx, err)
		}

		if framing == FramingLines {
			data = append(data, '\n')
		}
		if _, err := w.Write(data); err != nil {
			return ignoreDone(ctx, err)
		}
	}
}

// ignoreDone drops errors caused by the other direction shutting the session down.
func ignoreDone(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func ignoreEOF(ctx context.Context, err error) error {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, cancelreader.ErrCanceled) {
		return nil
	}
	return ignoreDone(ctx, err)
}
