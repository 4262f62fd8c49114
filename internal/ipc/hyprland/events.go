package hyprland

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const maxLine = 1 << 20

var errNoSeparator = errors.New(`missing ">>" separator`)

// rawEvent is one event-socket line split into its name and data.
type rawEvent struct {
	Name string
	Data string
}

// fields splits the data into want comma separated fields. The last field
// keeps any remaining commas since window titles may contain them.
func (e rawEvent) fields(want int) ([]string, bool) {
	parts := strings.SplitN(e.Data, ",", want)
	return parts, len(parts) == want
}

func parseLine(line string) (rawEvent, error) {
	name, data, ok := strings.Cut(line, ">>")
	if !ok || name == "" {
		return rawEvent{}, errNoSeparator
	}
	return rawEvent{Name: name, Data: data}, nil
}

// lineReader splits the event stream on newlines. Lines arriving across
// several reads are held in the scanner's buffer until complete.
type lineReader struct {
	scanner *bufio.Scanner
}

func newLineReader(r io.Reader) *lineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLine)
	return &lineReader{scanner: s}
}

// next returns the next non-empty line, or io.EOF when the stream ends.
func (l *lineReader) next() (string, error) {
	for l.scanner.Scan() {
		line := strings.TrimRight(l.scanner.Text(), "\r")
		if line != "" {
			return line, nil
		}
	}
	if err := l.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
