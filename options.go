package sshlines

import (
	"context"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

const defaultBufferSize = 8192

// Options are options for a Scanner or MultiScanner
type Options struct {
	// StorageClient is used for gs:// sources. When it is nil one is created
	// without authentication.
	StorageClient *storage.Client
	Filters       []Filter
	// Concurrency is how many sources a MultiScanner reads at once.
	Concurrency int
	// BufferSize is the size of each read from the underlying stream.
	BufferSize int
	Log        *LogContext
}

func (o *Options) withDefaults() *Options {
	if o == nil {
		o = new(Options)
	}
	out := *o
	if out.Concurrency < 1 {
		out.Concurrency = 1
	}
	if out.BufferSize < 1 {
		out.BufferSize = defaultBufferSize
	}
	if out.Log == nil {
		out.Log = NewLogContext()
	}
	return &out
}

// withStorage makes sure o has a StorageClient. owned is true when the client
// was created here and must be closed by the caller.
func (o *Options) withStorage(ctx context.Context) (owned bool, err error) {
	if o.StorageClient != nil {
		return false, nil
	}
	o.StorageClient, err = storage.NewClient(ctx, option.WithoutAuthentication())
	if err != nil {
		return false, err
	}
	return true, nil
}
