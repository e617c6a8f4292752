package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Codec converts a full record set to and from its on-disk text form.
type Codec interface {
	Decode(r io.Reader) ([]Appointment, error)
	Encode(w io.Writer, appts []Appointment) error
}

func CodecFor(v Variant) Codec {
	if v == VariantPlanner {
		return delimitedCodec{}
	}
	return quotedCodec{}
}

// MalformedError is returned together with the records decoded before
// the bad input. Callers that tolerate damaged files keep those records.
type MalformedError struct {
	Line int
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed record at line %d: %v", e.Line, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

var errUnterminatedQuote = errors.New("unterminated quoted field")

// +---------------------+
// |                     |
// |    Quoted Format    |
// |                     |
// +---------------------+

const bookingFields = 5

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}

// quotedCodec stores five double-quoted fields per line. On read the file
// is a stream of tokens, so line breaks are ordinary whitespace.
type quotedCodec struct{}

func (quotedCodec) Encode(w io.Writer, appts []Appointment) error {
	bw := bufio.NewWriter(w)
	for _, a := range appts {
		line := strings.Join([]string{
			quote(a.Name),
			quote(a.Service),
			quote(a.Staff),
			quote(a.Date),
			quote(a.Time),
		}, " ")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (quotedCodec) Decode(r io.Reader) ([]Appointment, error) {
	tok := &tokenizer{line: 1}
	sc := bufio.NewScanner(r)
	sc.Split(tok.split)

	var appts []Appointment
	fields := make([]string, 0, bookingFields)
	recordLine := 1
	for sc.Scan() {
		if len(fields) == 0 {
			recordLine = tok.start
		}
		fields = append(fields, sc.Text())
		if len(fields) == bookingFields {
			appts = append(appts, Appointment{
				Name:    fields[0],
				Service: fields[1],
				Staff:   fields[2],
				Date:    fields[3],
				Time:    fields[4],
			})
			fields = fields[:0]
		}
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, errUnterminatedQuote) {
			if len(fields) == 0 {
				recordLine = tok.start
			}
			return appts, &MalformedError{Line: recordLine, Err: err}
		}
		return appts, err
	}
	// a trailing incomplete record is dropped
	return appts, nil
}

// tokenizer is a bufio.SplitFunc source for quoted or bare tokens.
// Inside quotes a backslash takes the next byte literally.
type tokenizer struct {
	line  int // line of the next unread byte
	start int // line the last token started on
}

func (t *tokenizer) split(data []byte, atEOF bool) (int, []byte, error) {
	i := 0
	for i < len(data) && isSpace(data[i]) {
		i++
	}
	t.line += bytes.Count(data[:i], []byte{'\n'})
	if i == len(data) {
		return i, nil, nil
	}

	t.start = t.line
	advance, token, ok := scanToken(data[i:], atEOF)
	if !ok {
		if atEOF {
			return 0, nil, errUnterminatedQuote
		}
		// request more data, keeping what has been skipped
		return i, nil, nil
	}
	t.line += bytes.Count(data[i:i+advance], []byte{'\n'})
	return i + advance, token, nil
}

// scanToken reads one token from the start of data. ok is false when data
// ends before the token does.
func scanToken(data []byte, atEOF bool) (advance int, token []byte, ok bool) {
	if data[0] != '"' {
		j := 0
		for j < len(data) && !isSpace(data[j]) {
			j++
		}
		// a bare word at the end of the buffer may continue
		if j == len(data) && !atEOF {
			return 0, nil, false
		}
		return j, data[:j], true
	}

	token = []byte{}
	for j := 1; j < len(data); j++ {
		switch data[j] {
		case '\\':
			if j+1 >= len(data) {
				return 0, nil, false
			}
			j++
			token = append(token, data[j])
		case '"':
			return j + 1, token, true
		default:
			token = append(token, data[j])
		}
	}
	return 0, nil, false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// +------------------------+
// |                        |
// |    Delimited Format    |
// |                        |
// +------------------------+

const plannerFields = 4

// delimitedCodec stores name;date;time;category per line. Fields are not
// escaped, so an embedded ';' shifts the remaining fields on reload.
type delimitedCodec struct{}

func (delimitedCodec) Encode(w io.Writer, appts []Appointment) error {
	bw := bufio.NewWriter(w)
	for _, a := range appts {
		line := strings.Join([]string{a.Name, a.Date, a.Time, a.Category}, ";")
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (delimitedCodec) Decode(r io.Reader) ([]Appointment, error) {
	var appts []Appointment

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		parts := strings.Split(line, ";")
		for len(parts) < plannerFields {
			parts = append(parts, "")
		}
		appts = append(appts, Appointment{
			Name:     parts[0],
			Date:     parts[1],
			Time:     parts[2],
			Category: parts[3],
		})
	}
	if err := sc.Err(); err != nil {
		return appts, err
	}
	return appts, nil
}
