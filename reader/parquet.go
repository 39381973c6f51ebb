package reader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/spacemonkeygo/monkit/v3"
)

var mon = monkit.Package()

// DefaultBatchSize is the number of rows FileReader returns per batch.
const DefaultBatchSize = 1024

// maxFiles limits how many files a glob pattern may expand to.
const maxFiles = 1000

// FileReader reads a parquet file in batches of rows keyed by column name.
//
// It maintains both an OS file handle and a parquet file handle to enable
// proper resource cleanup. Batches share one buffer: the rows of a batch
// are cleared when it is released and reused by the next ReadBatch.
type FileReader struct {
	path      string
	file      *os.File
	pqFile    *parquet.File
	rows      *parquet.Reader
	batchSize int

	position int64
	free     []map[string]interface{}
	done     bool
}

// Open opens the parquet file at path for batched reading.
//
// The file is opened and validated as a parquet file. A batchSize below one
// selects DefaultBatchSize.
func Open(ctx context.Context, path string, batchSize int) (_ *FileReader, err error) {
	defer mon.Task()(&ctx)(&err)

	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, Error.New("failed to open file: %w", err)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, Error.New("failed to stat file: %w", err)
	}

	pqFile, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		_ = file.Close()
		return nil, Error.New("failed to open parquet file %s: %w", path, err)
	}

	return &FileReader{
		path:      path,
		file:      file,
		pqFile:    pqFile,
		rows:      parquet.NewReader(pqFile),
		batchSize: batchSize,
	}, nil
}

// Path returns the path the reader was opened with.
func (r *FileReader) Path() string { return r.path }

// Schema returns the parquet file schema.
func (r *FileReader) Schema() *parquet.Schema {
	return r.pqFile.Schema()
}

// NumRows returns the number of rows in the file.
func (r *FileReader) NumRows() int64 {
	return r.pqFile.NumRows()
}

// ReadBatch implements RecordReader. The returned batch reports positions
// relative to the start of the file.
func (r *FileReader) ReadBatch() (PositionIterator[map[string]interface{}], bool, error) {
	if r.rows == nil {
		return nil, false, Error.New("read from closed reader")
	}
	if r.done {
		return nil, false, nil
	}

	buffer := r.free
	r.free = nil
	if buffer == nil {
		buffer = make([]map[string]interface{}, 0, r.batchSize)
	}
	buffer = buffer[:0]

	for len(buffer) < r.batchSize {
		var row map[string]interface{}
		if n := len(buffer); n < cap(buffer) && buffer[:n+1][n] != nil {
			row = buffer[:n+1][n]
		} else {
			row = make(map[string]interface{})
		}

		err := r.rows.Read(&row)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.done = true
				break
			}
			return nil, false, Error.New("failed to read row %d of %s: %w", r.position+int64(len(buffer)), r.path, err)
		}
		buffer = append(buffer, row)
	}

	if len(buffer) == 0 {
		r.free = buffer
		return nil, false, nil
	}

	mon.IntVal("batch_rows").Observe(int64(len(buffer)))
	mon.Meter("rows_read").Mark(len(buffer))

	batch := &fileBatch{reader: r, rows: buffer, start: r.position}
	r.position += int64(len(buffer))
	return batch, true, nil
}

// Close closes the parquet reader and releases associated resources.
// It is safe to call Close multiple times.
func (r *FileReader) Close() error {
	var rowsErr error
	if r.rows != nil {
		rowsErr = r.rows.Close()
		r.rows = nil
	}
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		if err != nil {
			return Error.Wrap(err)
		}
	}
	return Error.Wrap(rowsErr)
}

type fileBatch struct {
	reader   *FileReader
	rows     []map[string]interface{}
	start    int64
	next     int
	released bool
}

func (b *fileBatch) Next() (map[string]interface{}, bool, error) {
	if b.released || b.next >= len(b.rows) {
		return nil, false, nil
	}
	row := b.rows[b.next]
	b.next++
	return row, true, nil
}

func (b *fileBatch) RowPosition() int64 {
	return b.start + int64(b.next)
}

func (b *fileBatch) ReleaseBatch() {
	if b.released {
		return
	}
	b.released = true
	for _, row := range b.rows {
		clear(row)
	}
	b.reader.free = b.rows
	b.rows = nil
}

// Glob expands pattern to the parquet files it names.
//
// The pattern can include wildcards:
//   - * matches any sequence of non-separator characters
//   - ? matches any single non-separator character
//   - [range] matches any character in range
//
// A pattern without wildcards is returned as is, whether or not it exists.
func Glob(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[]") {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, Error.New("invalid glob pattern: %w", err)
	}

	if len(matches) == 0 {
		return nil, Error.New("no files match pattern: %s", pattern)
	}

	if len(matches) > maxFiles {
		return nil, Error.New("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}

	return matches, nil
}
