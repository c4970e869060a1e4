package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cascadeforecast/internal/cascade"
)

const maxLine = 64 << 20

// LineError reports a line that could not be turned into a record.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *LineError) Unwrap() error { return e.Err }

// ParseLine tokenizes `message_id \t root \t publish_time \t declared \t paths`.
// The paths column may be missing or empty.
func ParseLine(line string) (cascade.Record, error) {
	var r cascade.Record
	parts := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(parts) < 4 {
		return r, fmt.Errorf("%w: expected at least 4 fields, got %d", cascade.ErrMalformedRecord, len(parts))
	}
	var err error
	if r.MessageID, err = strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64); err != nil {
		return r, fmt.Errorf("%w: message id: %v", cascade.ErrMalformedRecord, err)
	}
	if r.RootUserID, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64); err != nil {
		return r, fmt.Errorf("%w: root user: %v", cascade.ErrMalformedRecord, err)
	}
	if r.PublishTime, err = parseUnix(strings.TrimSpace(parts[2])); err != nil {
		return r, fmt.Errorf("%w: publish time: %v", cascade.ErrMalformedRecord, err)
	}
	if r.DeclaredRetweetCount, err = strconv.Atoi(strings.TrimSpace(parts[3])); err != nil {
		return r, fmt.Errorf("%w: retweet count: %v", cascade.ErrMalformedRecord, err)
	}
	if len(parts) > 4 {
		r.Paths = strings.Fields(parts[4])
	}
	return r, nil
}

func parseUnix(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// Reader streams records from a dataset file.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{sc: sc}
}

// Next returns the next record, io.EOF at the end, or a *LineError for a bad
// line. Reading may continue after a *LineError.
func (r *Reader) Next() (cascade.Record, error) {
	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		rec, err := ParseLine(text)
		if err != nil {
			return rec, &LineError{Line: r.line, Err: err}
		}
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return cascade.Record{}, err
	}
	return cascade.Record{}, io.EOF
}

// ReadAll collects every good record and reports bad lines as anomalies.
func ReadAll(in io.Reader) ([]cascade.Record, []cascade.Anomaly, error) {
	r := NewReader(in)
	var recs []cascade.Record
	var bad []cascade.Anomaly
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return recs, bad, nil
		}
		var le *LineError
		if errors.As(err, &le) {
			bad = append(bad, cascade.Anomaly{Kind: cascade.MalformedRecord, MessageID: rec.MessageID, Detail: le.Error()})
			continue
		}
		if err != nil {
			return recs, bad, err
		}
		recs = append(recs, rec)
	}
}
