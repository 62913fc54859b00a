// Package shared provides common CLI flag definitions and utility functions
// used across wsconnect's command-line interface.
package shared

import (
	"strings"
	"time"

	"dominicbreuker/wsconnect/pkg/handshake"

	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// VerboseFlag is the name of the flag to enable verbose logging.
const VerboseFlag = "verbose"

// ConfigFlag is the name of the flag to load settings from a YAML file.
const ConfigFlag = "config"

// GetCommonFlags returns the CLI flags shared by all commands.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.StringFlag{
			Name:     ConfigFlag,
			Aliases:  []string{"c"},
			Usage:    "YAML file with settings, flags given on the command line take precedence",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
	}
}

const categoryConnect = "connect"

// HeaderFlag is the name of the flag to add a handshake request header.
const HeaderFlag = "header"

// SubprotocolFlag is the name of the flag to offer a subprotocol.
const SubprotocolFlag = "subprotocol"

// HandshakerFlag is the name of the flag to select the WebSocket library.
const HandshakerFlag = "handshaker"

// ProxyFlag is the name of the flag to dial through a SOCKS5 proxy.
const ProxyFlag = "proxy"

// TimeoutFlag is the name of the flag to bound the connection attempt.
const TimeoutFlag = "timeout"

// LogFileFlag is the name of the flag to record the stream to a file.
const LogFileFlag = "log"

// BinaryFlag is the name of the flag to send stdin as binary messages.
const BinaryFlag = "binary"

// QuitAfterFlag is the name of the flag to linger after end of input.
const QuitAfterFlag = "quit-after"

// GetConnectFlags returns the CLI flags specific to connect mode.
func GetConnectFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     HeaderFlag,
			Aliases:  []string{"H"},
			Usage:    "Extra handshake header, format: -H 'Name: value' (repeatable)",
			Category: categoryConnect,
			Value:    []string{},
			Required: false,
		},
		&cli.StringSliceFlag{
			Name:     SubprotocolFlag,
			Aliases:  []string{"p"},
			Usage:    "Subprotocol to offer, in order of preference (repeatable)",
			Category: categoryConnect,
			Value:    []string{},
			Required: false,
		},
		&cli.StringFlag{
			Name:     HandshakerFlag,
			Usage:    "WebSocket library to use: " + strings.Join(handshake.Names(), "|"),
			Category: categoryConnect,
			Value:    handshake.NameGorilla,
			Required: false,
		},
		&cli.StringFlag{
			Name:     ProxyFlag,
			Usage:    "Open the socket through a SOCKS5 proxy, format: socks5://[user:pass@]host:port",
			Category: categoryConnect,
			Value:    "",
			Required: false,
		},
		&cli.DurationFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Bound for connecting, TLS and handshake together, 0 for no limit",
			Category: categoryConnect,
			Value:    10 * time.Second,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Log file for all bytes on the stream after TLS",
			Category: categoryConnect,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     BinaryFlag,
			Aliases:  []string{"b"},
			Usage:    "Send stdin as binary messages instead of one text message per line",
			Category: categoryConnect,
			Value:    false,
			Required: false,
		},
		&cli.DurationFlag{
			Name:     QuitAfterFlag,
			Aliases:  []string{"q"},
			Usage:    "Keep printing replies this long after end of input",
			Category: categoryConnect,
			Value:    time.Second,
			Required: false,
		},
	}
}

const categoryTLS = "tls"

// InsecureFlag is the name of the flag to skip certificate verification.
const InsecureFlag = "insecure"

// CAFlag is the name of the flag to trust a custom CA bundle.
const CAFlag = "ca"

// ServerNameFlag is the name of the flag to override SNI and verification name.
const ServerNameFlag = "server-name"

// NoTLSFlag is the name of the flag to refuse wss:// targets.
const NoTLSFlag = "no-tls"

// GetTLSFlags returns the CLI flags controlling TLS for wss:// targets.
func GetTLSFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     InsecureFlag,
			Aliases:  []string{"k"},
			Usage:    "Accept any server certificate and send no SNI",
			Category: categoryTLS,
			Value:    false,
			Required: false,
		},
		&cli.StringFlag{
			Name:     CAFlag,
			Usage:    "PEM file with CA certificates to trust instead of the system roots",
			Category: categoryTLS,
			Value:    "",
			Required: false,
		},
		&cli.StringFlag{
			Name:     ServerNameFlag,
			Usage:    "Name sent as SNI and verified against the certificate, defaults to the URL host",
			Category: categoryTLS,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     NoTLSFlag,
			Usage:    "Refuse wss:// targets",
			Category: categoryTLS,
			Value:    false,
			Required: false,
		},
	}
}

const categoryServe = "serve"

// MaxConnsFlag is the name of the flag to limit concurrent sessions.
const MaxConnsFlag = "max-conns"

// CAOutFlag is the name of the flag to write the server CA to a file.
const CAOutFlag = "ca-out"

// GetServeFlags returns the CLI flags specific to serve mode.
func GetServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:     MaxConnsFlag,
			Usage:    "Maximum concurrent sessions, further upgrades get 503",
			Category: categoryServe,
			Value:    100,
			Required: false,
		},
		&cli.StringSliceFlag{
			Name:     SubprotocolFlag,
			Aliases:  []string{"p"},
			Usage:    "Subprotocol to accept, in order of preference (repeatable)",
			Category: categoryServe,
			Value:    []string{},
			Required: false,
		},
		&cli.StringFlag{
			Name:     CAOutFlag,
			Usage:    "Write the PEM encoded CA of the ephemeral certificate to this file (wss only)",
			Category: categoryServe,
			Value:    "",
			Required: false,
		},
	}
}
