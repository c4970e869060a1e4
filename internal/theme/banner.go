package theme

import (
	"fmt"
)

// Banner returns the CLI banner.
func Banner() string {
	const cyan = "\033[36m"
	const magenta = "\033[35m"
	const reset = "\033[0m"

	art := "" +
		magenta + "  cascadeforecast" + reset + "\n" +
		cyan + "        o\n" +
		"       / \\\n" +
		"      o   o\n" +
		"     /|   |\\\n" +
		"    o o   o o  ...x2?\n" + reset +
		"  will this cascade double from its first k retweets?\n"
	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
