package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrScanCancelled reports that the operator aborted a scan without
// producing a code.
var ErrScanCancelled = errors.New("scan cancelled")

// Scanner yields one decoded code per call. The detection mechanism behind
// it (keyboard wedge, camera pipeline, manual typing) is the
// implementation's business; the rest of the client only ever sees strings.
type Scanner interface {
	Scan(ctx context.Context) (string, error)
}

// promptScanner reads codes from the terminal. Wedge scanners emit the
// decoded code as keystrokes followed by Enter, so a line read covers both
// hardware scanning and manual entry. An empty line cancels the scan.
type promptScanner struct {
	reader *bufio.Reader
	w      io.Writer
}

func NewPromptScanner(reader *bufio.Reader, w io.Writer) Scanner {
	return &promptScanner{reader: reader, w: w}
}

func (s *promptScanner) Scan(_ context.Context) (string, error) {
	if _, err := fmt.Fprint(s.w, "> "); err != nil {
		return "", err
	}
	line, err := s.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", ErrScanCancelled
	}
	code := strings.TrimSpace(line)
	if code == "" {
		return "", ErrScanCancelled
	}
	return code, nil
}
