package dataset

import (
	"errors"
	"strings"
	"testing"

	"cascadeforecast/internal/cascade"
)

func TestParseLine(t *testing.T) {
	r, err := ParseLine("100\t1\t1464710400\t3\t1:0 1/2:10 1/3:20 1/2/4:30")
	if err != nil { t.Fatal(err) }
	if r.MessageID != 100 || r.RootUserID != 1 || r.PublishTime != 1464710400 || r.DeclaredRetweetCount != 3 {
		t.Fatalf("header: %+v", r)
	}
	if len(r.Paths) != 4 || r.Paths[3] != "1/2/4:30" { t.Fatalf("paths: %v", r.Paths) }
}

func TestParseLineWithoutPaths(t *testing.T) {
	r, err := ParseLine("5\t1\t1464710400.0\t0")
	if err != nil { t.Fatal(err) }
	if len(r.Paths) != 0 || r.PublishTime != 1464710400 { t.Fatalf("got %+v", r) }
}

func TestParseLineErrors(t *testing.T) {
	for _, in := range []string{"1\t2\t3", "x\t1\t2\t3\t", "1\ty\t2\t3\t", "1\t1\tnow\t3\t", "1\t1\t2\tmany\t"} {
		if _, err := ParseLine(in); !errors.Is(err, cascade.ErrMalformedRecord) {
			t.Fatalf("%q: expected malformed record, got %v", in, err)
		}
	}
}

func TestReadAllSkipsBadLines(t *testing.T) {
	in := strings.Join([]string{
		"1\t1\t0\t2\t1/2:5 1/3:6",
		"",
		"broken line",
		"2\t7\t0\t1\t7/8:3",
	}, "\n")
	recs, bad, err := ReadAll(strings.NewReader(in))
	if err != nil { t.Fatal(err) }
	if len(recs) != 2 || recs[1].MessageID != 2 { t.Fatalf("records: %+v", recs) }
	if len(bad) != 1 || bad[0].Kind != cascade.MalformedRecord || !strings.Contains(bad[0].Detail, "line 3") {
		t.Fatalf("anomalies: %+v", bad)
	}
}
