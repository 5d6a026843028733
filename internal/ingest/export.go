package ingest

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/transform"

	"github.com/ppiankov/pulsedeck/internal/model"
)

// WriteFile writes the cleaned dataset to path, creating parent directories
func WriteFile(path string, ds *model.Dataset, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}

	if err := Write(f, ds, opts); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write encodes the dataset with the same encoding and delimiter the export
// was read with. Columns follow ds.Columns.
func Write(w io.Writer, ds *model.Dataset, opts Options) error {
	enc, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return err
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = '\t'
	}

	encoded := transform.NewWriter(w, enc.NewEncoder())
	buf := bufio.NewWriter(encoded)

	cw := csv.NewWriter(buf)
	cw.Comma = opts.Delimiter

	if err := cw.Write(ds.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(ds.Columns))
	for i := range ds.Records {
		rec := &ds.Records[i]
		for j, col := range ds.Columns {
			row[j] = rec.Field(col)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	// Close flushes the encoder's pending state without closing w
	if err := encoded.Close(); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}
