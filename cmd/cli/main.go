package main

import (
	"fmt"
	"os"

	"github.com/crucial707/fpadmin/cmd/cli/app"
	"github.com/crucial707/fpadmin/cmd/cli/auth"
	"github.com/crucial707/fpadmin/cmd/cli/logs"
	"github.com/crucial707/fpadmin/cmd/cli/mapping"
	"github.com/crucial707/fpadmin/cmd/cli/root"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	logs.InitLogs(rootCmd)
	mapping.InitMapping(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		if !app.IsReported(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
