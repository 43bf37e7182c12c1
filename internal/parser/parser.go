// Package parser reads the plain "key = value" configuration format and
// comma-separated directory lists.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	databaseRe    = regexp.MustCompile(`(?i)^database\s*=\s*(.+)$`)
	directoriesRe = regexp.MustCompile(`(?i)^directories\s*=\s*(.+)$`)
	matchesRe     = regexp.MustCompile(`(?i)^matches\s*=\s*(\d+)$`)
	recursionRe   = regexp.MustCompile(`(?i)^recursion\s*=\s*(-?\d+)$`)
	verboseRe     = regexp.MustCompile(`(?i)^verbose\s*=\s*(yes|no)$`)
)

// ErrSyntax is wrapped by every error about a malformed line.
var ErrSyntax = errors.New("invalid configuration line")

// Settings holds the values found in a configuration file. Pointer fields
// are nil when the file does not set them.
type Settings struct {
	Database    string
	Directories []string
	Matches     *int
	Recursion   *int
	Verbose     *bool
}

// LineError reports the line a Scanner rejected.
type LineError struct {
	Name string
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v: %q", e.Name, e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Scanner parses one configuration source. A Scanner is used for a single
// Scan call.
type Scanner struct {
	name     string
	line     int
	settings Settings
}

// NewScanner returns a Scanner that names errors after name.
func NewScanner(name string) *Scanner {
	return &Scanner{name: name}
}

// Scan reads every line of r. Blank lines and lines starting with '#' are
// ignored; any other line must be one of the known keys. Keys are matched
// case-insensitively and later lines override earlier ones, except that
// directories lines accumulate.
func (s *Scanner) Scan(r io.Reader) (*Settings, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		s.line++
		text := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if err := s.parseLine(trimmed); err != nil {
			return nil, &LineError{Name: s.name, Line: s.line, Text: text, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}
	return &s.settings, nil
}

func (s *Scanner) parseLine(line string) error {
	if m := databaseRe.FindStringSubmatch(line); m != nil {
		s.settings.Database = strings.TrimSpace(m[1])
		return nil
	}
	if m := directoriesRe.FindStringSubmatch(line); m != nil {
		s.settings.Directories = append(s.settings.Directories, SplitDirectories(m[1])...)
		return nil
	}
	if m := matchesRe.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return fmt.Errorf("%w: matches: %w", ErrSyntax, err)
		}
		s.settings.Matches = &n
		return nil
	}
	if m := recursionRe.FindStringSubmatch(line); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return fmt.Errorf("%w: recursion: %w", ErrSyntax, err)
		}
		s.settings.Recursion = &n
		return nil
	}
	if m := verboseRe.FindStringSubmatch(line); m != nil {
		v := strings.EqualFold(m[1], "yes")
		s.settings.Verbose = &v
		return nil
	}
	return ErrSyntax
}

// Parse reads settings from r with a fresh Scanner.
func Parse(name string, r io.Reader) (*Settings, error) {
	return NewScanner(name).Scan(r)
}

// SplitDirectories splits a comma-separated list. A backslash before a
// comma keeps the comma in the name. Empty names are dropped.
func SplitDirectories(list string) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(list); i++ {
		c := list[i]
		switch {
		case c == '\\' && i+1 < len(list) && list[i+1] == ',':
			cur.WriteByte(',')
			i++
		case c == ',':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}
