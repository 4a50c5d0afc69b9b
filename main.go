package main

import (
	"os"

	"github.com/tphakala/applog/cmd"
	"github.com/tphakala/applog/internal/app"
)

func main() {
	ctx := app.NewContext()

	rootCmd := cmd.RootCommand(ctx)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
