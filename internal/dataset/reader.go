package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Row is one decoded CSV record of a dataset archive.
type Row struct {
	Fields map[string]string
	// Source is empty when the archive name does not follow the dataset
	// naming pattern.
	Source Partition
	// Line is the 1-based position of the record in its archive, header
	// excluded.
	Line int
}

// Get returns the value of column and whether the column exists.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

// Rows streams the records of an xz-compressed CSV archive. The file is
// closed when the sequence ends or the consumer stops early.
func Rows(path string) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield(Row{}, fmt.Errorf("open dataset: %w", err))
			return
		}
		defer f.Close()

		source, _ := PartitionFromPath(path)
		for row, err := range decode(f, source) {
			if err != nil {
				err = fmt.Errorf("read %s: %w", path, err)
			}
			if !yield(row, err) || err != nil {
				return
			}
		}
	}
}

func decode(r io.Reader, source Partition) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		zr, err := decompress(bufio.NewReader(r))
		if err != nil {
			yield(Row{}, err)
			return
		}

		cr := csv.NewReader(zr)
		cr.ReuseRecord = true
		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			yield(Row{}, fmt.Errorf("header: %w", err))
			return
		}
		header = append([]string(nil), header...)

		for line := 1; ; line++ {
			record, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Row{}, fmt.Errorf("line %d: %w", line, err))
				return
			}
			fields := make(map[string]string, len(header))
			for i, name := range header {
				fields[name] = record[i]
			}
			if !yield(Row{Fields: fields, Source: source, Line: line}, nil) {
				return
			}
		}
	}
}

// decompress reads an xz container, or a legacy .lzma stream when the xz
// magic bytes are absent.
func decompress(br *bufio.Reader) (io.Reader, error) {
	magic, err := br.Peek(xz.HeaderLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("xz: %w", err)
	}
	if xz.ValidHeader(magic) {
		zr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return zr, nil
	}
	lr, err := lzma.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	return lr, nil
}
