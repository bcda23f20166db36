package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bastiangx/addrserve/internal/utils"
	"github.com/bastiangx/addrserve/pkg/region"
)

// TSVSource reads a hand-maintained region list, one region per line:
//
//	id<TAB>parent_id<TAB>type<TAB>name[<TAB>alias1|alias2]
//
// Lines starting with # are comments. Type is a name such as "county" or its
// numeric rank.
type TSVSource struct {
	Path string
}

func (s *TSVSource) Load(ctx context.Context) ([]region.Record, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", s.Path, err)
	}
	defer file.Close()
	return ReadTSV(ctx, file)
}

// ReadTSV decodes records from r.
func ReadTSV(ctx context.Context, r io.Reader) ([]region.Record, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []region.Record
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog row: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rec, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(fields []string) (region.Record, error) {
	if len(fields) < 4 {
		return region.Record{}, fmt.Errorf("expected at least 4 fields, got %d", len(fields))
	}
	id, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return region.Record{}, fmt.Errorf("bad id %q: %w", fields[0], err)
	}
	parent, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return region.Record{}, fmt.Errorf("bad parent id %q: %w", fields[1], err)
	}
	typ, err := region.ParseType(fields[2])
	if err != nil {
		return region.Record{}, err
	}
	rec := region.Record{
		ID:       id,
		ParentID: parent,
		Type:     typ,
		Name:     strings.TrimSpace(fields[3]),
	}
	if len(fields) > 4 {
		rec.Alias = utils.SplitAliases(fields[4])
	}
	return rec, nil
}

// WriteTSV writes records in the format ReadTSV accepts.
func WriteTSV(w io.Writer, records []region.Record) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'
	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			strconv.FormatInt(rec.ParentID, 10),
			rec.Type.String(),
			rec.Name,
			strings.Join(rec.Alias, "|"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
