// cmd/widgetd/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "widgetd",
	Short: "Contact widget availability daemon",
	Long: `widgetd decides whether live chat is offered on a page and drives the
chat / offline affordances over a WebSocket.

Examples:
  widgetd run --config widgetd.yaml
  widgetd validate --config widgetd.toml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "widgetd.yaml", "Config file (YAML, or TOML by .toml extension)")
	rootCmd.AddCommand(runCmd, validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
