package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/shelflife"
)

type modelFake struct {
	responses []string
	errs      []error
	requests  []domain.ModelRequest
}

func (f *modelFake) Generate(_ context.Context, req domain.ModelRequest) (string, error) {
	i := len(f.requests)
	f.requests = append(f.requests, req)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unexpected model call")
}

type cacheFake struct {
	entries  map[string]domain.CachedEstimate
	getErr   error
	upErr    error
	upserted []domain.CachedEstimate
}

func (f *cacheFake) GetMany(_ context.Context, queries []string) (map[string]domain.CachedEstimate, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make(map[string]domain.CachedEstimate)
	for _, q := range queries {
		if e, ok := f.entries[q]; ok {
			out[q] = e
		}
	}
	return out, nil
}

func (f *cacheFake) Upsert(_ context.Context, entries []domain.CachedEstimate) error {
	f.upserted = append(f.upserted, entries...)
	return f.upErr
}

type observerFake struct {
	mu       sync.Mutex
	repairs  int
	stages   []string
	dropped  map[string]int
	emitted  map[domain.EstimateSource]int
	cache    []string
	expiries []domain.EstimateSource
}

func newObserverFake() *observerFake {
	return &observerFake{dropped: map[string]int{}, emitted: map[domain.EstimateSource]int{}}
}

func (f *observerFake) RecoveryFinished(_ string, stage string, _ bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, stage)
}

func (f *observerFake) RepairCalled(string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repairs++
}

func (f *observerFake) ItemsEmitted(source domain.EstimateSource, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted[source] += n
}

func (f *observerFake) ItemsDropped(reason string, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped[reason] += n
}

func (f *observerFake) CacheLookup(result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = append(f.cache, result)
}

func (f *observerFake) ExpiryEstimated(source domain.EstimateSource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiries = append(f.expiries, source)
}

type pdfFake struct {
	text string
	err  error
	got  []byte
}

func (f *pdfFake) ExtractText(_ context.Context, data []byte) (string, error) {
	f.got = data
	return f.text, f.err
}

type storageFake struct {
	objects map[string][]byte
	saveErr error
	deleted []string
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func mustCatalog() *shelflife.Catalog {
	catalog, err := shelflife.DefaultCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 10, 18, 30, 0, 0, time.UTC)
}
