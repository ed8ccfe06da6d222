package ledger

import (
	"context"
	"io"
	"strings"
)

// MockRunner is a Runner serving canned output, for tests.
type MockRunner struct {
	// Outputs maps a subcommand (print, bs, bal) to its stdout.
	Outputs map[string]string
	// Errors maps a subcommand to the error it fails with.
	Errors map[string]error
	// CloseErr is returned from Close on streams that were fully read.
	CloseErr error

	// Call tracking
	Calls   [][]string
	Streams []*MockStream
}

// NewMockRunner creates a mock runner with no canned output.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Outputs: map[string]string{},
		Errors:  map[string]error{},
	}
}

// Stream implements Runner.Stream.
func (m *MockRunner) Stream(_ context.Context, args ...string) (io.ReadCloser, error) {
	m.Calls = append(m.Calls, args)

	if err := m.Errors[subcommand(args)]; err != nil {
		return nil, err
	}

	stream := &MockStream{
		reader:   strings.NewReader(m.Outputs[subcommand(args)]),
		closeErr: m.CloseErr,
	}
	m.Streams = append(m.Streams, stream)
	return stream, nil
}

// Output implements Runner.Output.
func (m *MockRunner) Output(_ context.Context, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, args)

	if err := m.Errors[subcommand(args)]; err != nil {
		return nil, err
	}
	return []byte(m.Outputs[subcommand(args)]), nil
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// MockStream is the stream handed out by MockRunner.
type MockStream struct {
	reader   *strings.Reader
	closeErr error
	Closed   int
	eof      bool
}

func (s *MockStream) Read(b []byte) (int, error) {
	n, err := s.reader.Read(b)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

// Close records the call. Like Process, it only reports an error once the
// stream has been read to the end.
func (s *MockStream) Close() error {
	s.Closed++
	if s.eof {
		return s.closeErr
	}
	return nil
}
