package backup

import (
	"bytes"
	"context"
	"errors"
	"netbackup/internal/controller"
	"sync"
)

// scriptedProber returns sizes[i] (or errs[i] when set) for the i-th probe.
type scriptedProber struct {
	sizes []int64
	errs  []error
	calls int
}

func (p *scriptedProber) Probe(ctx context.Context, target string, session controller.Session) (int64, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return 0, p.errs[i]
	}
	if i < len(p.sizes) {
		return p.sizes[i], nil
	}
	return 0, nil
}

// scriptedFetcher returns a body of sizes[i] bytes (or errs[i] when set).
type scriptedFetcher struct {
	sizes       []int
	errs        []error
	contentType string
	calls       int
}

func (f *scriptedFetcher) Fetch(ctx context.Context, target string, session controller.Session) (*controller.Artifact, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	size := 0
	if i < len(f.sizes) {
		size = f.sizes[i]
	}
	ct := f.contentType
	if ct == "" {
		ct = controller.DefaultContentType
	}
	return &controller.Artifact{Data: bytes.Repeat([]byte{7}, size), ContentType: ct}, nil
}

type put struct {
	key         string
	size        int
	contentType string
}

// memStore records every Put. failures makes the first n puts fail.
type memStore struct {
	mu       sync.Mutex
	puts     []put
	failures int
}

func (s *memStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("bucket unavailable")
	}
	s.puts = append(s.puts, put{key: key, size: len(data), contentType: contentType})
	return nil
}

func (s *memStore) Puts() []put {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]put(nil), s.puts...)
}
