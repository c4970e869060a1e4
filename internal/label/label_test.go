package label

import (
	"testing"

	"cascadeforecast/internal/cascade"
)

func TestDoublingBoundary(t *testing.T) {
	if Doubling(10, 5) != 1 { t.Fatal("10 >= 2*5 should be positive") }
	if Doubling(9, 5) != 0 { t.Fatal("9 < 2*5 should be negative") }
	if Doubling(0, 0) != 1 { t.Fatal("k=0 trivially doubles") }
}

func TestFinalSize(t *testing.T) {
	c, _, err := cascade.Build(cascade.Record{MessageID: 1, RootUserID: 1, DeclaredRetweetCount: 9, Paths: []string{"1/2:1", "1/3:2", "1/2:5"}})
	if err != nil { t.Fatal(err) }
	if FinalSize(c, Declared) != 9 { t.Fatal("declared size") }
	if FinalSize(c, Observed) != 2 { t.Fatal("observed size") }
}

func TestParseSizeSource(t *testing.T) {
	if s, err := ParseSizeSource(""); err != nil || s != Declared { t.Fatalf("default: %v %v", s, err) }
	if s, err := ParseSizeSource("observed"); err != nil || s != Observed { t.Fatalf("observed: %v %v", s, err) }
	if _, err := ParseSizeSource("final"); err == nil { t.Fatal("expected error") }
}
