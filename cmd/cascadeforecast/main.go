package main

import (
	"fmt"
	"os"

	"cascadeforecast/cmd/cascadeforecast/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
