package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brettbedarf/diskshell"
)

// Sentinel delimits the content block of a record
const Sentinel = "~0~"

// escapePrefix is prepended to content lines that would otherwise read as a
// sentinel (or that already start with the prefix) and stripped on decode.
const escapePrefix = `\`

const metaFields = 5

// Encode writes rec to w in the store format
func Encode(w io.Writer, rec diskshell.Record) error {
	bw := bufio.NewWriter(w)
	// bufio.Writer errors are sticky and surface on Flush
	fmt.Fprintf(bw, "%c\t%s\t%s\t%s\t%d\n", byte(rec.Kind), rec.Path, rec.Name, rec.Timestamp, rec.Size)
	bw.WriteString(Sentinel + "\n")
	for _, line := range strings.Split(rec.Content, "\n") {
		bw.WriteString(escapeLine(line))
		bw.WriteByte('\n')
	}
	bw.WriteString(Sentinel + "\n")
	return bw.Flush()
}

func escapeLine(line string) string {
	if line == Sentinel || strings.HasPrefix(line, escapePrefix) {
		return escapePrefix + line
	}
	return line
}

func unescapeLine(line string) string {
	return strings.TrimPrefix(line, escapePrefix)
}

// rawRecord is a decoded record plus the exact bytes it occupied in the store
type rawRecord struct {
	rec diskshell.Record
	raw []byte
}

// Decoder reads records sequentially from a store stream
type Decoder struct {
	r    *bufio.Reader
	line int // last line number read
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next decodes the next record. It returns io.EOF once the stream ends on a
// record boundary.
func (d *Decoder) Next() (diskshell.Record, error) {
	rr, err := d.next()
	return rr.rec, err
}

func (d *Decoder) next() (rawRecord, error) {
	meta, raw, err := d.readLine()
	if err != nil {
		return rawRecord{}, err
	}
	rec, err := parseMeta(meta)
	if err != nil {
		return rawRecord{}, fmt.Errorf("line %d: %w", d.line, err)
	}
	rr := rawRecord{raw: []byte(raw)}

	line, raw, err := d.readLine()
	if err != nil {
		return rawRecord{}, d.truncated(rec.Path, err)
	}
	if line != Sentinel {
		return rawRecord{}, fmt.Errorf("line %d: %w: expected %q before content of %s",
			d.line, diskshell.ErrMalformedRecord, Sentinel, rec.Path)
	}
	rr.raw = append(rr.raw, raw...)

	var content []string
	for {
		line, raw, err = d.readLine()
		if err != nil {
			return rawRecord{}, d.truncated(rec.Path, err)
		}
		rr.raw = append(rr.raw, raw...)
		if line == Sentinel {
			break
		}
		content = append(content, unescapeLine(line))
	}
	rec.Content = strings.Join(content, "\n")
	rr.rec = rec
	return rr, nil
}

// readLine returns the next line without its terminator along with the raw
// bytes read. A final line lacking a newline is still returned.
func (d *Decoder) readLine() (line, raw string, err error) {
	raw, err = d.r.ReadString('\n')
	if errors.Is(err, io.EOF) && raw != "" {
		err = nil
	}
	if err != nil {
		return "", "", err
	}
	d.line++
	return strings.TrimSuffix(raw, "\n"), raw, nil
}

func (d *Decoder) truncated(path string, err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("line %d: %w: content block of %s is not terminated", d.line, diskshell.ErrMalformedRecord, path)
	}
	return err
}

func parseMeta(line string) (diskshell.Record, error) {
	fields := strings.Split(line, "\t")
	kind, err := diskshell.ParseKind(fields[0])
	if err != nil {
		return diskshell.Record{}, err
	}
	if len(fields) != metaFields {
		return diskshell.Record{}, fmt.Errorf("%w: want %d fields, got %d", diskshell.ErrMalformedRecord, metaFields, len(fields))
	}
	size, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return diskshell.Record{}, fmt.Errorf("%w: bad size %q", diskshell.ErrMalformedRecord, fields[4])
	}
	return diskshell.Record{
		Kind:      kind,
		Path:      fields[1],
		Name:      fields[2],
		Timestamp: fields[3],
		Size:      size,
	}, nil
}
