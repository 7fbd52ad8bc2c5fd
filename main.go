// asksql answers natural-language questions about a SQL database.
package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/JonMunkholm/AskSQL/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
