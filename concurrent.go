package sshlines

import (
	"context"
	"sync"

	"github.com/killa-beez/gopkgs/pool"
)

// HostLine is a line of output from one host's stream.
type HostLine struct {
	Host   string
	Stream string
	Data   []byte
}

// MultiScanner scans lines from several sources at once. Lines from one
// source keep their order. Lines from different sources interleave.
type MultiScanner struct {
	opts        *Options
	sourceErrs  []error
	lines       chan HostLine
	cancel      func()
	ownedClient bool
	line        HostLine

	errLock sync.RWMutex
	err     error
	closed  bool

	// closed once every worker has returned
	doneChan chan struct{}
}

// ScanSources starts reading every source with up to opts.Concurrency
// sources open at a time.
func ScanSources(ctx context.Context, sources []Source, opts *Options) (*MultiScanner, error) {
	opts = opts.withDefaults()
	m := &MultiScanner{
		opts:       opts,
		sourceErrs: make([]error, len(sources)),
		lines:      make(chan HostLine, opts.Concurrency*1000),
		doneChan:   make(chan struct{}),
	}
	for _, src := range sources {
		if !src.isGCS() {
			continue
		}
		var err error
		m.ownedClient, err = opts.withStorage(ctx)
		if err != nil {
			return nil, err
		}
		break
	}
	ctx, m.cancel = context.WithCancel(ctx)

	if len(sources) == 0 {
		close(m.doneChan)
		return m, nil
	}
	p := pool.New(len(sources), opts.Concurrency)
	for i := range sources {
		i := i
		src := sources[i]
		p.Add(pool.NewWorkUnit(func(ctx2 context.Context) {
			m.sourceErrs[i] = runSource(ctx2, src, opts, m.lines)
		}))
	}
	p.Start(ctx)
	go func() {
		p.Wait()
		close(m.doneChan)
	}()
	return m, nil
}

func runSource(ctx context.Context, src Source, opts *Options, lines chan<- HostLine) (err error) {
	rdr := new(objReader)
	err = rdr.open(ctx, src, opts.StorageClient)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := rdr.Close()
		if err == nil {
			err = closeErr
		}
	}()
	scanner := NewScanner(rdr, src.String(), opts)
	for scanner.Scan(ctx) {
		data := make([]byte, len(scanner.Bytes()))
		copy(data, scanner.Bytes())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case lines <- HostLine{Host: src.Host, Stream: src.Stream, Data: data}:
		}
	}
	return scanner.Err()
}

// Close stops all readers and waits for them to return. Scan returns false
// after Close.
func (m *MultiScanner) Close() error {
	m.errLock.Lock()
	defer m.errLock.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.cancel()
	<-m.doneChan
	if m.ownedClient {
		return m.opts.StorageClient.Close()
	}
	return nil
}

func (m *MultiScanner) isClosed() bool {
	m.errLock.RLock()
	defer m.errLock.RUnlock()
	return m.closed
}

// Err returns the first error from any source.
func (m *MultiScanner) Err() error {
	m.errLock.RLock()
	err := m.err
	m.errLock.RUnlock()
	return err
}

// Scan advances to the next line from any source.
func (m *MultiScanner) Scan(ctx context.Context) bool {
	if m.isClosed() {
		return false
	}
	select {
	case m.line = <-m.lines:
		return true
	default:
	}

	select {
	case m.line = <-m.lines:
		return true
	case <-ctx.Done():
		m.errLock.Lock()
		m.err = ctx.Err()
		m.errLock.Unlock()
		return false
	case <-m.doneChan:
		// workers may have queued lines right before finishing
		select {
		case m.line = <-m.lines:
			return true
		default:
		}
		m.errLock.Lock()
		for _, err := range m.sourceErrs {
			if err != nil {
				m.err = err
				break
			}
		}
		m.errLock.Unlock()
		return false
	}
}

// Line returns the current line
func (m *MultiScanner) Line() HostLine {
	return m.line
}
