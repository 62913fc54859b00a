package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogger_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		verbose bool
		log     func(l *Logger)
		want    string
	}{
		{
			name: "info",
			log:  func(l *Logger) { l.InfoMsg("connecting to %s\n", "ws://x") },
			want: "[+] connecting to ws://x",
		},
		{
			name: "error",
			log:  func(l *Logger) { l.ErrorMsg("dial: %s\n", "refused") },
			want: "[!] Error: dial: refused",
		},
		{
			name:    "verbose enabled",
			verbose: true,
			log:     func(l *Logger) { l.VerboseMsg("stage %d", 4) },
			want:    "[v] stage 4\n",
		},
		{
			name: "verbose disabled",
			log:  func(l *Logger) { l.VerboseMsg("stage %d", 4) },
			want: "",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tc.log(NewLoggerTo(&buf, tc.verbose))

			got := buf.String()
			if tc.want == "" {
				if got != "" {
					t.Errorf("output = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tc.want) {
				t.Errorf("output = %q, want it to contain %q", got, tc.want)
			}
		})
	}
}

func TestLogger_Nil(t *testing.T) {
	t.Parallel()

	var l *Logger
	l.InfoMsg("ignored")
	l.ErrorMsg("ignored")
	l.VerboseMsg("ignored")
}
