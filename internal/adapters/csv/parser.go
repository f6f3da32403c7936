// Package csv decodes task imports from CSV documents with a header row.
package csv

import (
	"bufio"
	"bytes"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/jszwec/csvutil"

	"github.com/taskmaster/tasks/internal/domain/entities"
	"github.com/taskmaster/tasks/internal/ports"
)

var (
	requiredColumns = []string{"title", "description"}
	utf8BOM         = []byte{0xEF, 0xBB, 0xBF}
)

// skipBOM drops a leading UTF-8 byte order mark as written by spreadsheet
// exports.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// ParseTasks reads a header row followed by data rows. Only the title and
// description columns are consumed; both must be present in the header.
func ParseTasks(r io.Reader) ([]ports.ImportTaskRow, error) {
	reader := stdcsv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1

	dec, err := csvutil.NewDecoder(reader)
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty document", entities.ErrInvalidCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrInvalidCSV, err)
	}
	dec.DisallowMissingColumns = true

	for _, column := range requiredColumns {
		if !slices.Contains(dec.Header(), column) {
			return nil, fmt.Errorf("%w: missing column %q", entities.ErrInvalidCSV, column)
		}
	}

	var rows []ports.ImportTaskRow
	for {
		var row ports.ImportTaskRow
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entities.ErrInvalidCSV, err)
		}
		line, _ := reader.FieldPos(0)
		row.Line = line
		rows = append(rows, row)
	}

	return rows, nil
}
