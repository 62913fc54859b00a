// Package connect implements the connect command, which opens a WebSocket
// connection and bridges it to stdin and stdout.
package connect

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"dominicbreuker/wsconnect/cmd/shared"
	"dominicbreuker/wsconnect/pkg/config"
	wsconnect "dominicbreuker/wsconnect/pkg/connect"
	"dominicbreuker/wsconnect/pkg/pipeio"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// GetCommand returns the CLI command for connect mode.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "connect",
		Usage:     "Connect to a WebSocket server and bridge it to stdin/stdout",
		ArgsUsage: "url",
		Description: strings.Join([]string{
			"Specify the target like this: ws://example.com/chat or wss://example.com:8443/chat",
			"Each line read from stdin is sent as a text message, each message received is printed on a line.",
		}, "\n"),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() > 1 {
				return fmt.Errorf("must provide at most one argument, got %d (%s)", args.Len(), strings.Join(args.Slice(), ", "))
			}

			cfg, err := shared.ClientConfig(cmd, args.Get(0))
			if err != nil {
				return err
			}

			if err := shared.ReportValidation(config.Validate(cfg)); err != nil {
				return err
			}

			opts := pipeio.Options{Framing: pipeio.FramingLines, Linger: cmd.Duration(shared.QuitAfterFlag)}
			if cmd.Bool(shared.BinaryFlag) {
				opts.Framing = pipeio.FramingBinary
			}

			return Run(ctx, cfg, opts)
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetConnectFlags()...)
	flags = append(flags, shared.GetTLSFlags()...)

	return flags
}

// Run connects to cfg.URL and pipes the session to stdin and stdout until
// either side ends it. cfg.Timeout bounds only the connection attempt.
func Run(ctx context.Context, cfg *config.Client, opts pipeio.Options) error {
	logger := cfg.GetLogger()

	target, err := wsconnect.NewRequest(cfg.URL, cfg.HTTPHeader(), cfg.Subprotocols...)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", cfg.URL, err)
	}

	connectCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	logger.VerboseMsg("Connecting to %s", target.URL.Redacted())
	start := time.Now()

	conn, _, err := wsconnect.Connect(connectCtx, target, cfg)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	if sp := conn.Subprotocol(); sp != "" {
		logger.InfoMsg("Connected to %s (subprotocol %s) in %v\n", target.URL.Redacted(), sp, time.Since(start).Round(time.Millisecond))
	} else {
		logger.InfoMsg("Connected to %s in %v\n", target.URL.Redacted(), time.Since(start).Round(time.Millisecond))
	}

	stdin := config.GetStdinFunc(cfg.Deps)()
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		logger.InfoMsg("Type a message and press enter to send it, Ctrl-D to quit\n")
	}

	stdio := pipeio.NewStdio(stdin, config.GetStdoutFunc(cfg.Deps)())
	if err := pipeio.Pipe(ctx, conn, stdio, opts); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	logger.VerboseMsg("Session closed")
	return nil
}
