package label

import (
	"fmt"

	"cascadeforecast/internal/cascade"
)

// SizeSource selects which count stands for the final cascade size.
type SizeSource string

const (
	// Declared uses the retweet count carried by the input record.
	Declared SizeSource = "declared"
	// Observed uses the number of deduplicated events in the built cascade.
	Observed SizeSource = "observed"
)

func ParseSizeSource(s string) (SizeSource, error) {
	switch SizeSource(s) {
	case Declared, Observed:
		return SizeSource(s), nil
	case "":
		return Declared, nil
	}
	return "", fmt.Errorf("unknown size source %q", s)
}

// FinalSize returns the size the doubling rule compares against.
func FinalSize(c *cascade.Cascade, src SizeSource) int {
	if src == Observed {
		return c.Len()
	}
	return c.DeclaredRetweetCount()
}

// Doubling is 1 when the cascade at least doubled from its first k retweets.
func Doubling(finalSize, k int) int {
	if finalSize >= 2*k {
		return 1
	}
	return 0
}
