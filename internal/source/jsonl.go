package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rpggio/geodash/internal/domain/record"
)

const maxLineSize = 1 << 20

// JSONL reads the dataset from a file holding one JSON record per line.
type JSONL struct {
	Path string
}

// NewJSONL creates a provider for the file at path.
func NewJSONL(path string) *JSONL {
	return &JSONL{Path: path}
}

// Fetch reads every record in file order.
func (j *JSONL) Fetch(ctx context.Context) ([]record.Record, error) {
	f, err := os.Open(j.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", j.Path, err)
	}
	defer f.Close()
	return DecodeJSONL(ctx, f)
}

// DecodeJSONL decodes records from r. Blank lines are skipped; any other line
// that is not a record fails the whole read.
func DecodeJSONL(ctx context.Context, r io.Reader) ([]record.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []record.Record
	line := 0
	for scanner.Scan() {
		line++
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec record.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", record.ErrMalformedData, line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return records, nil
}

// EncodeJSONL writes one record per line.
func EncodeJSONL(w io.Writer, records []record.Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding record %d: %w", r.ID, err)
		}
	}
	return nil
}

// WriteJSONL replaces the file at path with records. The data is written to a
// temporary file in the same directory and renamed into place.
func WriteJSONL(path string, records []record.Record) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".geodash-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	bw := bufio.NewWriter(tmp)
	if err := EncodeJSONL(bw, records); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flushing %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
