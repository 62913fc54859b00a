package main

import (
	"context"
	"os"

	"dominicbreuker/wsconnect/cmd/connect"
	"dominicbreuker/wsconnect/cmd/serve"
	"dominicbreuker/wsconnect/cmd/shared"
	"dominicbreuker/wsconnect/cmd/version"
	"dominicbreuker/wsconnect/pkg/log"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared.SetupSignalHandling(cancel, shared.ShutdownGrace)

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "wsconnect",
		Usage: "WebSocket client over ws:// and wss://, with an echo server for testing",
		Commands: []*cli.Command{
			connect.GetCommand(),
			serve.GetCommand(),
			version.GetCommand(),
		},
	}
}
