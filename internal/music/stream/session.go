package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"layeh.com/gopus"
)

// Conn is the slice of a voice connection the session needs.
type Conn interface {
	Speaking(bool) error
	WriteOpus(ctx context.Context, frame []byte) error
}

// Session encodes a PCM stream to opus and pushes 20ms frames to a voice
// connection. Pausing holds the read loop without tearing the pipeline down.
type Session struct {
	stream    io.ReadCloser
	parser    string
	conn      Conn
	encoder   *gopus.Encoder
	bytesRead atomic.Int64

	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

func NewSession(ts *TrackStream, conn Conn) (*Session, error) {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return nil, fmt.Errorf("encoder error: %w", err)
	}
	return &Session{
		stream:  ts,
		parser:  ts.Parser,
		conn:    conn,
		encoder: encoder,
	}, nil
}

// SetPaused toggles the pause gate. Repeated calls with the same value are
// no-ops.
func (s *Session) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paused == s.paused {
		return
	}
	s.paused = paused
	if paused {
		s.resume = make(chan struct{})
	} else {
		close(s.resume)
	}
}

// Position reports how much audio has been read so far.
func (s *Session) Position() time.Duration {
	bytes := s.bytesRead.Load()
	seconds := float64(bytes) / float64(sampleRate*channels*2)
	return time.Duration(seconds * float64(time.Second))
}

func (s *Session) waitIfPaused(ctx context.Context) error {
	s.mu.Lock()
	if !s.paused {
		s.mu.Unlock()
		return nil
	}
	resume := s.resume
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-resume:
		return nil
	}
}

// Run pumps frames until the stream ends or ctx is canceled. It returns
// nil on a clean end of stream.
func (s *Session) Run(ctx context.Context) error {
	defer s.stream.Close()

	if err := s.conn.Speaking(true); err != nil {
		return &StreamError{Parser: s.parser, Err: err}
	}
	defer s.conn.Speaking(false)

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.waitIfPaused(ctx); err != nil {
			return err
		}

		n, err := io.ReadFull(s.stream, pcmBuf)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			// Zero-pad the trailing partial frame.
			for i := n; i < len(pcmBuf); i++ {
				pcmBuf[i] = 0
			}
		} else if err != nil {
			return &StreamError{Parser: s.parser, Err: err}
		}
		s.bytesRead.Add(int64(n))

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, encErr := s.encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if encErr != nil {
			return &StreamError{Parser: s.parser, Err: encErr}
		}

		if sendErr := s.conn.WriteOpus(ctx, opus); sendErr != nil {
			if errors.Is(sendErr, context.Canceled) || errors.Is(sendErr, context.DeadlineExceeded) {
				return sendErr
			}
			return &StreamError{Parser: s.parser, Err: sendErr}
		}

		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
	}
}
