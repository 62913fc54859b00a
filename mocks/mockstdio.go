package mocks

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// MockStdio stands in for a terminal: tests type into stdin and watch what
// the program prints on stdout.
type MockStdio struct {
	stdinReader *io.PipeReader
	stdinWriter *io.PipeWriter

	mu      sync.Mutex
	out     bytes.Buffer
	updated chan struct{}
}

// NewMockStdio creates a mock stdio with an empty stdout.
func NewMockStdio() *MockStdio {
	r, w := io.Pipe()
	return &MockStdio{
		stdinReader: r,
		stdinWriter: w,
		updated:     make(chan struct{}),
	}
}

// Type writes data to stdin. It blocks until the program reads it.
func (m *MockStdio) Type(data string) error {
	_, err := m.stdinWriter.Write([]byte(data))
	return err
}

// CloseStdin signals end of input.
func (m *MockStdio) CloseStdin() error {
	return m.stdinWriter.Close()
}

// Output returns everything written to stdout so far.
func (m *MockStdio) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.String()
}

// Stdin has the signature of config.StdinFunc.
func (m *MockStdio) Stdin() io.ReadCloser {
	return m.stdinReader
}

// Stdout has the signature of config.StdoutFunc.
func (m *MockStdio) Stdout() io.Writer {
	return stdoutWriter{m}
}

// WaitForOutput waits until stdout contains expected.
func (m *MockStdio) WaitForOutput(expected string, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		m.mu.Lock()
		found := strings.Contains(m.out.String(), expected)
		updated := m.updated
		m.mu.Unlock()

		if found {
			return nil
		}

		select {
		case <-updated:
		case <-deadline.C:
			return fmt.Errorf("timeout waiting for output %q, got: %q", expected, m.Output())
		}
	}
}

type stdoutWriter struct {
	m *MockStdio
}

func (w stdoutWriter) Write(p []byte) (int, error) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()

	n, err := w.m.out.Write(p)
	close(w.m.updated)
	w.m.updated = make(chan struct{})
	return n, err
}
