package main

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

const maxLineBytes = 1 << 20

// lineReader reads the session format line by line and remembers the line
// number for error messages.
type lineReader struct {
	scanner *bufio.Scanner
	line    int
}

func newLineReader(r io.Reader) *lineReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &lineReader{scanner: s}
}

// next returns the next line without its terminator; ok is false at EOF.
func (r *lineReader) next() (string, bool, error) {
	if !r.scanner.Scan() {
		return "", false, r.scanner.Err()
	}
	r.line++
	return strings.TrimSuffix(r.scanner.Text(), "\r"), true, nil
}

func (r *lineReader) require(what string) (string, error) {
	line, ok, err := r.next()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", apperrors.Newf(apperrors.ErrInvalidArgument, "line %d: unexpected end of input, want %s", r.line+1, what)
	}
	return line, nil
}

func (r *lineReader) number(what string) (int, error) {
	line, err := r.require(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 {
		return 0, apperrors.Newf(apperrors.ErrInvalidArgument, "line %d: %s must be a non-negative integer, got %q", r.line, what, line)
	}
	return n, nil
}

// parseRatings parses "N r1 .. rN". An empty line means no ratings.
func parseRatings(line string) ([]int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidArgument, "ratings count %q is not a non-negative integer", fields[0])
	}
	if len(fields)-1 != count {
		return nil, apperrors.Newf(apperrors.ErrInvalidArgument, "ratings line announces %d ratings but has %d", count, len(fields)-1)
	}
	ratings := make([]int, count)
	for i, f := range fields[1:] {
		r, err := strconv.Atoi(f)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidArgument, "rating %q is not an integer", f)
		}
		ratings[i] = r
	}
	return ratings, nil
}
