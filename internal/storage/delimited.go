package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Veraticus/fleet/internal/model"
)

// FieldCount is the number of comma-separated fields in a boat line:
// CATEGORY,NAME,YEAR,MAKE_MODEL,LENGTH,PRICE.
const FieldCount = 6

// ErrMalformedLine is returned when a delimited line cannot become a boat.
var ErrMalformedLine = errors.New("malformed boat line")

// LineError describes one line that was skipped while reading delimited data.
type LineError struct {
	Err  error
	Text string
	Line int
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ParseBoatLine builds a boat from one CATEGORY,NAME,YEAR,MAKE_MODEL,LENGTH,PRICE line.
func ParseBoatLine(line string, bounds model.Bounds) (*model.Boat, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != FieldCount {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedLine, FieldCount, len(fields))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("%w: year %q is not a number", ErrMalformedLine, fields[2])
	}
	length, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, fmt.Errorf("%w: length %q is not a number", ErrMalformedLine, fields[4])
	}
	price, err := model.ParseMoney(fields[5])
	if err != nil {
		return nil, fmt.Errorf("%w: price: %w", ErrMalformedLine, err)
	}

	boat, err := model.NewBoat(model.Category(fields[0]), fields[1], year, fields[3], length, price, bounds)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}
	return boat, nil
}

// ReadDelimited reads one boat per line from r. Blank lines are ignored.
// Malformed lines are skipped and reported; they never abort the read.
// The returned error is reserved for failures of r itself.
func ReadDelimited(r io.Reader, bounds model.Bounds) (*model.Fleet, []*LineError, error) {
	fleet := model.NewFleet()
	var skipped []*LineError

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fleet, skipped, fmt.Errorf("failed to read boat data: %w", readErr)
		}
		if raw == "" && readErr != nil {
			break
		}

		lineNo++
		text := strings.TrimRight(raw, "\r\n")
		if lineNo == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if strings.TrimSpace(text) != "" {
			boat, err := ParseBoatLine(text, bounds)
			if err != nil {
				slog.Warn("Skipping malformed boat line", "line", lineNo, "error", err)
				skipped = append(skipped, &LineError{Line: lineNo, Text: text, Err: err})
			} else {
				fleet.Add(boat)
			}
		}

		if readErr != nil {
			break
		}
	}

	return fleet, skipped, nil
}

// LoadOption customizes LoadFromDelimitedText.
type LoadOption func(*loadOptions)

type loadOptions struct {
	wrap func(r io.Reader, size int64) io.Reader
}

// WithReaderWrapper wraps the opened file before it is read, for example
// to drive a progress bar. size is the file size in bytes.
func WithReaderWrapper(wrap func(r io.Reader, size int64) io.Reader) LoadOption {
	return func(o *loadOptions) {
		o.wrap = wrap
	}
}

// LoadFromDelimitedText reads a first-run data file into a new fleet.
func LoadFromDelimitedText(path string, bounds model.Bounds, opts ...LoadOption) (*model.Fleet, []*LineError, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, nil, err
	}

	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}

	// #nosec G304 - path is supplied by the user on the command line
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("failed to close data file", "error", closeErr)
		}
	}()

	var r io.Reader = f
	if o.wrap != nil {
		var size int64 = -1
		if info, statErr := f.Stat(); statErr == nil {
			size = info.Size()
		}
		r = o.wrap(f, size)
	}

	return ReadDelimited(r, bounds)
}
