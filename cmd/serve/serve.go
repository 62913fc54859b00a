// Package serve implements the serve command, which runs a WebSocket echo
// server for testing clients.
package serve

import (
	"context"
	"fmt"
	"strings"

	"dominicbreuker/wsconnect/cmd/shared"
	"dominicbreuker/wsconnect/pkg/config"
	"dominicbreuker/wsconnect/pkg/echo"
	"dominicbreuker/wsconnect/pkg/log"

	"github.com/urfave/cli/v3"
)

// GetCommand returns the CLI command for serve mode.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "Run a WebSocket echo server",
		ArgsUsage: "listen-address",
		Description: strings.Join([]string{
			"Specify the listen address like this: ws://127.0.0.1:8080 or wss://*:8443",
			"You can omit the host to bind to all interfaces.",
			"For wss an ephemeral certificate is generated on startup; use --ca-out to export its CA.",
		}, "\n"),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("must provide exactly one argument, got %d (%s)", args.Len(), strings.Join(args.Slice(), ", "))
			}

			cfg, err := shared.ServerConfig(cmd, args.Get(0))
			if err != nil {
				return fmt.Errorf("parsing listen address: %w", err)
			}

			if err := shared.ReportValidation(config.Validate(cfg)); err != nil {
				return err
			}

			return echo.ListenAndServe(ctx, cfg, log.NewLogger(cfg.Verbose))
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetServeFlags()...)

	return flags
}
