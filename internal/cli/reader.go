package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// LineReader yields one line of console input at a time.
type LineReader interface {
	ReadLine(ctx context.Context) (string, error)
}

// ConsoleReader reads lines from a stream and gives up waiting when the
// context is canceled.
type ConsoleReader struct {
	reader      *bufio.Reader
	readingLock sync.Mutex
}

// NewConsoleReader creates a reader over r.
func NewConsoleReader(r io.Reader) *ConsoleReader {
	if r == nil {
		panic("reader cannot be nil")
	}

	return &ConsoleReader{
		reader: bufio.NewReader(r),
	}
}

// ReadLine reads one line with surrounding whitespace trimmed.
// A final line without a trailing newline is returned normally; the next
// call reports io.EOF.
func (r *ConsoleReader) ReadLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInputCancelled
	}

	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		r.readingLock.Lock()
		defer r.readingLock.Unlock()

		value, err := r.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		// The read goroutine finishes on its own once input arrives.
		return "", ErrInputCancelled
	case res := <-resultCh:
		if errors.Is(res.err, io.EOF) && res.value != "" {
			return strings.TrimSpace(res.value), nil
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}
