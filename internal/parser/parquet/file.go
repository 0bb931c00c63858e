package parquet

import (
	"bytes"
	"errors"

	"github.com/xitongsys/parquet-go/source"
)

// bytesFile is a read-only source.ParquetFile over an in-memory object.
type bytesFile struct {
	*bytes.Reader
	data []byte
}

func newBytesFile(data []byte) source.ParquetFile {
	return &bytesFile{Reader: bytes.NewReader(data), data: data}
}

// Open returns an independent reader; parquet-go opens one per column.
func (f *bytesFile) Open(string) (source.ParquetFile, error) {
	return newBytesFile(f.data), nil
}

func (f *bytesFile) Create(string) (source.ParquetFile, error) {
	return nil, errors.New("parquet: bytes file is read-only")
}

func (f *bytesFile) Write([]byte) (int, error) {
	return 0, errors.New("parquet: bytes file is read-only")
}

func (f *bytesFile) Close() error { return nil }
