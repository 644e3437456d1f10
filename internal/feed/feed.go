// Package feed reads supplier feed files into import sources.
package feed

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/agentstation/supplymap/pkg/constants"
	"github.com/agentstation/supplymap/pkg/errors"
	"github.com/agentstation/supplymap/pkg/ingest"
)

// Format names a feed encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = constants.FormatCSV
	FormatJSON Format = constants.FormatJSON
)

// ParseFormat validates a format name. An empty name is returned as is.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, "":
		return f, nil
	default:
		return "", errors.NewValidationError("format", s, "must be one of: csv, json")
	}
}

// DetectFormat picks a format from the file extension, defaulting to CSV.
func DetectFormat(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// Open reads the file at path. An empty format is detected from the
// extension.
func Open(path string, format Format) (ingest.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	if format == "" {
		format = DetectFormat(path)
	}
	switch format {
	case FormatJSON:
		return ReadJSON(bytes.NewReader(data), path)
	default:
		return ReadCSV(bytes.NewReader(data), path)
	}
}

// ReadCSV reads a header row and data rows. Rows keep their own cell count,
// so short and long rows reach the pipeline and are skipped there. name is
// used in errors.
func ReadCSV(r io.Reader, name string) (*ingest.Table, error) {
	decoded, err := decode(r)
	if err != nil {
		return nil, errors.NewParseError(constants.FormatCSV, name, "decode", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParseError(constants.FormatCSV, name, "no header row", nil)
		}
		return nil, errors.NewParseError(constants.FormatCSV, name, "header row", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows [][]string
	for {
		cells, err := reader.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				// Keep the row slot; a nil row has the wrong width and is skipped.
				rows = append(rows, nil)
				continue
			}
			return nil, errors.NewParseError(constants.FormatCSV, name, "read", err)
		}
		rows = append(rows, cells)
	}
	return ingest.NewTable(header, rows), nil
}

// ReadJSON reads an array of objects, or a single object.
func ReadJSON(r io.Reader, name string) (ingest.Documents, error) {
	decoded, err := decode(r)
	if err != nil {
		return nil, errors.NewParseError(constants.FormatJSON, name, "decode", err)
	}
	decoded = bytes.TrimSpace(decoded)
	if len(decoded) == 0 {
		return nil, errors.NewParseError(constants.FormatJSON, name, "empty document", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(decoded))
	dec.UseNumber()

	if decoded[0] == '{' {
		var doc map[string]any
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.NewParseError(constants.FormatJSON, name, "object", err)
		}
		return ingest.Documents{doc}, nil
	}

	var docs []any
	if err := dec.Decode(&docs); err != nil {
		return nil, errors.NewParseError(constants.FormatJSON, name, "expected an array of objects", err)
	}
	return ingest.Documents(docs), nil
}

// decode strips a byte order mark and converts UTF-16 or Latin-1 input to
// UTF-8.
func decode(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var fallback encoding.Encoding = unicode.UTF8
	if !utf8.Valid(data) && !hasUTF16BOM(data) {
		fallback = charmap.ISO8859_1
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(fallback.NewDecoder()), data)
	return out, err
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
