package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Options describes how an export is encoded on disk
type Options struct {
	Encoding  string // utf-16 (default), utf-16be, utf-8, latin-1, windows-1252
	Delimiter rune   // '\t' by default
}

// DefaultOptions matches the monitoring tool's export: UTF-16 with BOM, tab separated
func DefaultOptions() Options {
	return Options{Encoding: "utf-16", Delimiter: '\t'}
}

// OptionsFrom builds reader options from configuration strings
func OptionsFrom(encodingName, delimiter string) (Options, error) {
	opts := DefaultOptions()
	if encodingName != "" {
		opts.Encoding = encodingName
	}
	if delimiter != "" {
		r, size := utf8.DecodeRuneInString(delimiter)
		if size != len(delimiter) {
			return opts, fmt.Errorf("delimiter must be a single character, got %q", delimiter)
		}
		opts.Delimiter = r
	}
	if _, err := lookupEncoding(opts.Encoding); err != nil {
		return opts, err
	}
	return opts, nil
}

// Table is a raw delimited table: a header plus rows padded to the header width
type Table struct {
	Header []string
	Rows   [][]string
}

// Index returns the position of the named column, or -1
func (t *Table) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries the named column
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// ReadFile reads an export from disk
func ReadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f, opts)
}

// Read decodes and parses an export stream
func Read(r io.Reader, opts Options) (*Table, error) {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}

	reader := csv.NewReader(transform.NewReader(r, enc.NewDecoder()))
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: empty export")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	table := &Table{Header: header}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(table.Rows)+2, err)
		}
		if isBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, pad(row, len(header)))
	}

	return table, nil
}

// lookupEncoding maps a configured encoding name to a text encoding
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-16", "utf16", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "utf-8", "utf8":
		return unicode.UTF8BOM, nil
	case "latin-1", "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding: %s (supported: utf-16, utf-16be, utf-8, latin-1, windows-1252)", name)
	}
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
