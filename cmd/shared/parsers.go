package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var listenRe = regexp.MustCompile(`^(ws|wss)://(\[[^\]]*\]|[^:\[\]]*):(\d+)$`)

// ParseListen parses a listen address in the format "ws://host:port" or
// "wss://host:port". The host can be empty or "*" to bind to all
// interfaces; IPv6 hosts are bracketed.
func ParseListen(s string) (host string, port int, tls bool, err error) {
	matches := listenRe.FindStringSubmatch(s)
	if len(matches) != 4 {
		err = parsingError(s)
		return
	}

	tls = matches[1] == "wss"

	host = strings.TrimSuffix(strings.TrimPrefix(matches[2], "["), "]")
	if host == "*" { // also counts as all interfaces
		host = ""
	}

	port, err = strconv.Atoi(matches[3])
	if err != nil || port < 1 || port > 65535 {
		err = parsingError(s)
		return
	}

	return
}

func parsingError(s string) error {
	return fmt.Errorf("parsing %s: format should be 'protocol://host:port', where protocol = ws|wss", s)
}

// ParseHeaders parses "Name: value" pairs. Later duplicates win.
func ParseHeaders(specs []string) (map[string]string, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	out := make(map[string]string, len(specs))
	for _, raw := range specs {
		name, value, ok := strings.Cut(raw, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("parsing header %q: format should be 'Name: value'", raw)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}
