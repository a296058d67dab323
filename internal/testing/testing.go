// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

// MockRoundTripper returns a fixed HTTP response for every request
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SeqRoundTripper replays a queue of responses in order, repeating the last
// one once the queue is drained. Requests are recorded for inspection.
type SeqRoundTripper struct {
	responses []*http.Response
	errs      []error
	calls     int
	Requests  []*http.Request
}

func NewSeqRoundTripper() *SeqRoundTripper {
	return &SeqRoundTripper{}
}

// Push appends a response with the given status, body, and headers to the queue.
func (s *SeqRoundTripper) Push(status int, body string, header http.Header) *SeqRoundTripper {
	if header == nil {
		header = http.Header{}
	}
	s.responses = append(s.responses, &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	})
	s.errs = append(s.errs, nil)
	return s
}

// PushErr appends a transport-level failure to the queue.
func (s *SeqRoundTripper) PushErr(err error) *SeqRoundTripper {
	s.responses = append(s.responses, nil)
	s.errs = append(s.errs, err)
	return s
}

func (s *SeqRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.Requests = append(s.Requests, req)
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	if idx < 0 {
		return nil, errors.New("no responses queued")
	}
	return s.responses[idx], s.errs[idx]
}

// Calls reports how many requests the transport has served.
func (s *SeqRoundTripper) Calls() int {
	return s.calls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// FCloser simulates a failure when reading a response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
