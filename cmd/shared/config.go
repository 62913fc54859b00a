package shared

import (
	"fmt"

	"dominicbreuker/wsconnect/pkg/config"
	"dominicbreuker/wsconnect/pkg/log"

	"github.com/urfave/cli/v3"
)

// ClientConfig builds the client configuration for cmd: the --config file
// first, then every flag set on the command line, then rawURL if not empty.
func ClientConfig(cmd *cli.Command, rawURL string) (*config.Client, error) {
	cfg := &config.Client{
		Handshaker: cmd.String(HandshakerFlag),
		Timeout:    cmd.Duration(TimeoutFlag),
	}

	if path := cmd.String(ConfigFlag); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if cmd.IsSet(HeaderFlag) {
		headers, err := ParseHeaders(cmd.StringSlice(HeaderFlag))
		if err != nil {
			return nil, err
		}
		if cfg.Header == nil {
			cfg.Header = map[string]string{}
		}
		for k, v := range headers {
			cfg.Header[k] = v
		}
	}

	overrideStrings(cmd, cfg)

	if cmd.IsSet(SubprotocolFlag) {
		cfg.Subprotocols = cmd.StringSlice(SubprotocolFlag)
	}
	if cmd.IsSet(TimeoutFlag) {
		cfg.Timeout = cmd.Duration(TimeoutFlag)
	}
	if cmd.IsSet(InsecureFlag) {
		cfg.Insecure = cmd.Bool(InsecureFlag)
	}
	if cmd.IsSet(NoTLSFlag) {
		cfg.DisableTLS = cmd.Bool(NoTLSFlag)
	}
	if cmd.IsSet(VerboseFlag) {
		cfg.Verbose = cmd.Bool(VerboseFlag)
	}

	if rawURL != "" {
		cfg.URL = rawURL
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("no URL given, pass it as argument or set 'url' in the config file")
	}

	cfg.Logger = log.NewLogger(cfg.Verbose)
	return cfg, nil
}

func overrideStrings(cmd *cli.Command, cfg *config.Client) {
	fields := []struct {
		flag string
		dst  *string
	}{
		{HandshakerFlag, &cfg.Handshaker},
		{ProxyFlag, &cfg.Proxy},
		{CAFlag, &cfg.CAFile},
		{ServerNameFlag, &cfg.ServerName},
		{LogFileFlag, &cfg.LogFile},
	}

	for _, f := range fields {
		if cmd.IsSet(f.flag) {
			*f.dst = cmd.String(f.flag)
		}
	}
}

// ServerConfig builds the echo server configuration from the listen
// address and the flags of cmd.
func ServerConfig(cmd *cli.Command, listen string) (*config.Server, error) {
	host, port, tls, err := ParseListen(listen)
	if err != nil {
		return nil, err
	}

	cfg := &config.Server{
		MaxConns: int(cmd.Int(MaxConnsFlag)),
	}

	if path := cmd.String(ConfigFlag); path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// the listen argument always wins over the file
	cfg.Host, cfg.Port, cfg.TLS = host, port, tls

	if cmd.IsSet(MaxConnsFlag) {
		cfg.MaxConns = int(cmd.Int(MaxConnsFlag))
	}
	if cmd.IsSet(SubprotocolFlag) {
		cfg.Subprotocols = cmd.StringSlice(SubprotocolFlag)
	}
	if cmd.IsSet(CAOutFlag) {
		cfg.CAOut = cmd.String(CAOutFlag)
	}
	if cmd.IsSet(VerboseFlag) {
		cfg.Verbose = cmd.Bool(VerboseFlag)
	}

	return cfg, nil
}

// ReportValidation logs validation errors and returns an error if there were any.
func ReportValidation(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	log.ErrorMsg("Argument validation errors:\n")
	for _, err := range errs {
		log.ErrorMsg(" - %s\n", err)
	}
	return fmt.Errorf("exiting")
}
