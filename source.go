package sshlines

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/klauspost/compress/gzip"
)

// Source is one captured output stream of a remote host.
type Source struct {
	Host string
	// Stream is usually "stdout" or "stderr"
	Stream string
	// Path is a local file or a gs://bucket/object url. Names ending in
	// .gz are decompressed.
	Path string
}

func (s Source) String() string {
	if s.Stream == "" {
		return s.Host
	}
	return s.Host + ":" + s.Stream
}

// ParseSource parses "[host[:stream]=]path". The host defaults to path. Text
// before the first '=' is only a host when it has no '/', so "/tmp/a=b.log"
// is a path.
func ParseSource(s string) (Source, error) {
	var src Source
	idx := strings.Index(s, "=")
	if idx == -1 || strings.Contains(s[:idx], "/") {
		src.Host, src.Path = s, s
	} else {
		src.Host, src.Path = s[:idx], s[idx+1:]
		if i := strings.LastIndex(src.Host, ":"); i >= 0 {
			src.Host, src.Stream = src.Host[:i], src.Host[i+1:]
		}
	}
	if src.Path == "" {
		return Source{}, fmt.Errorf("source %q has no path", s)
	}
	if src.Host == "" {
		src.Host = src.Path
	}
	return src, nil
}

func (s Source) isGCS() bool {
	return strings.HasPrefix(s.Path, "gs://")
}

func splitGCSPath(p string) (bucket, object string, err error) {
	p = strings.TrimPrefix(p, "gs://")
	idx := strings.Index(p, "/")
	if idx < 1 || idx == len(p)-1 {
		return "", "", fmt.Errorf("invalid gs:// path %q", "gs://"+p)
	}
	return p[:idx], p[idx+1:], nil
}

// objReader reads a source, decompressing it when needed.
type objReader struct {
	rdr   io.Reader
	gzRdr *gzip.Reader
}

func (z *objReader) Read(p []byte) (n int, err error) {
	if z.gzRdr != nil {
		return z.gzRdr.Read(p)
	}
	return z.rdr.Read(p)
}

func (z *objReader) Close() error {
	var err error
	if z.gzRdr != nil {
		err = z.gzRdr.Close()
	}
	if z.rdr == nil {
		return err
	}
	if rdr, ok := z.rdr.(io.Closer); ok {
		rdrErr := rdr.Close()
		if rdrErr != nil {
			return rdrErr
		}
	}
	return err
}

// Reset closes the current reader and switches to r.
func (z *objReader) Reset(r io.Reader, gzipped bool) error {
	err := z.Close()
	if err != nil {
		return err
	}
	z.rdr = r
	if !gzipped {
		z.gzRdr = nil
		return nil
	}
	if z.gzRdr == nil {
		z.gzRdr, err = gzip.NewReader(r)
		return err
	}
	return z.gzRdr.Reset(r)
}

func (z *objReader) open(ctx context.Context, src Source, client *storage.Client) error {
	gzipped := strings.HasSuffix(src.Path, ".gz")
	if !src.isGCS() {
		file, err := os.Open(src.Path)
		if err != nil {
			return err
		}
		return z.resetOrClose(file, gzipped)
	}
	if client == nil {
		return fmt.Errorf("no storage client for %s", src.Path)
	}
	bucket, object, err := splitGCSPath(src.Path)
	if err != nil {
		return err
	}
	rdr, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src.Path, err)
	}
	return z.resetOrClose(rdr, gzipped)
}

func (z *objReader) resetOrClose(rc io.ReadCloser, gzipped bool) error {
	err := z.Reset(rc, gzipped)
	if err != nil {
		z.rdr = nil
		_ = rc.Close() //nolint:errcheck // already returning an error
	}
	return err
}
