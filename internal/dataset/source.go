// Package dataset locates the compressed reimbursement datasets and reads
// them into raw rows.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-resty/resty/v2"
)

// Partition is one named slice of the dataset.
type Partition string

const (
	CurrentYear   Partition = "current-year"
	LastYear      Partition = "last-year"
	PreviousYears Partition = "previous-years"
)

// Partitions lists every partition in load order.
var Partitions = []Partition{CurrentYear, LastYear, PreviousYears}

var fileNamePattern = regexp.MustCompile(`^[\d-]{11}(current-year|last-year|previous-years)\.xz$`)

// FileName returns the archive name for a partition published on date.
func FileName(date string, p Partition) string {
	return fmt.Sprintf("%s-%s.xz", date, p)
}

// DatasetURL returns the public location of a dataset archive.
func DatasetURL(region, bucket, fileName string) string {
	return fmt.Sprintf("https://%s.amazonaws.com/%s/%s", region, bucket, fileName)
}

// PartitionFromPath infers the partition from an archive's base name.
func PartitionFromPath(path string) (Partition, bool) {
	m := fileNamePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", false
	}
	return Partition(m[1]), true
}

// Discoverer yields the paths of the dataset archives to load.
type Discoverer interface {
	Datasets(ctx context.Context) iter.Seq2[string, error]
}

// Local finds archives already present in a directory.
type Local struct {
	Dir  string
	Date string
	Log  *slog.Logger
}

func (l *Local) Datasets(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range Partitions {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			path, found, err := l.locate(p)
			if err != nil {
				yield("", err)
				return
			}
			if !found {
				l.Log.Warn("dataset not found", "partition", p, "path", path)
				continue
			}
			l.Log.Info("loading dataset", "partition", p, "path", path)
			if !yield(path, nil) {
				return
			}
		}
	}
}

// locate reports whether the archive for p exists under l.Dir.
func (l *Local) locate(p Partition) (string, bool, error) {
	path := filepath.Join(l.Dir, FileName(l.Date, p))
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return path, false, nil
	case err != nil:
		return path, false, fmt.Errorf("stat %s: %w", path, err)
	case info.IsDir():
		return path, false, nil
	}
	return path, true, nil
}

// Remote downloads each archive to a temporary directory before yielding
// it. The directory is removed once the consumer moves on.
type Remote struct {
	Client *resty.Client
	Region string
	Bucket string
	Date   string
	Log    *slog.Logger

	// URLFor overrides DatasetURL; used to point at a test server.
	URLFor func(fileName string) string
}

// NewRemote returns a Remote with a resty client that never retries.
func NewRemote(region, bucket, date string, log *slog.Logger) *Remote {
	return &Remote{
		Client: resty.New().SetRetryCount(0),
		Region: region,
		Bucket: bucket,
		Date:   date,
		Log:    log,
	}
}

func (r *Remote) Datasets(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, p := range Partitions {
			if !r.fetch(ctx, p, yield) {
				return
			}
		}
	}
}

// fetch downloads one partition and yields its path. It returns false when
// iteration must stop.
func (r *Remote) fetch(ctx context.Context, p Partition, yield func(string, error) bool) bool {
	name := FileName(r.Date, p)
	url := r.url(name)
	r.Log.Info("loading dataset", "partition", p, "url", url)

	dir, err := os.MkdirTemp("", "jarbas-dataset-")
	if err != nil {
		yield("", fmt.Errorf("create temp dir: %w", err))
		return false
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			r.Log.Warn("remove temp dataset", "dir", dir, "error", err)
		}
	}()

	path := filepath.Join(dir, name)
	resp, err := r.Client.R().SetContext(ctx).SetOutput(path).Get(url)
	if err != nil {
		yield("", fmt.Errorf("download %s: %w", url, err))
		return false
	}
	if resp.IsError() {
		yield("", fmt.Errorf("download %s: status %d", url, resp.StatusCode()))
		return false
	}
	return yield(path, nil)
}

func (r *Remote) url(fileName string) string {
	if r.URLFor != nil {
		return r.URLFor(fileName)
	}
	return DatasetURL(r.Region, r.Bucket, fileName)
}
