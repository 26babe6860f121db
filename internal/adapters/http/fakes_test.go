package httpadapter

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/config"
	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

type scannerFake struct {
	batch *domain.BatchResult
	err   error
	got   *domain.ScanRequest
}

func (f *scannerFake) Scan(_ context.Context, req domain.ScanRequest) (*domain.BatchResult, error) {
	if f.got != nil {
		*f.got = req
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.batch != nil {
		return f.batch, nil
	}
	return &domain.BatchResult{PurchaseDate: domain.NewCalendarDate(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))}, nil
}

type expiryFake struct {
	est *domain.ExpiryEstimate
	err error
	got *domain.ExpiryRequest
}

func (f *expiryFake) Predict(_ context.Context, req domain.ExpiryRequest) (*domain.ExpiryEstimate, error) {
	if f.got != nil {
		*f.got = req
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.est != nil {
		return f.est, nil
	}
	ref := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return &domain.ExpiryEstimate{
		PredictedExpiry: ref.AddDate(0, 0, 3),
		Days:            3,
		ReferenceDate:   ref,
		ReferenceType:   domain.ReferencePurchase,
		Source:          domain.SourceRule,
	}, nil
}

type exporterFake struct {
	err error
}

func (f exporterFake) ExportXLSX(context.Context, domain.BatchResult) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("PK-fake-workbook"), nil
}

type scanJobsFake struct {
	jobs      map[string]*domain.ScanJob
	submitErr error
}

func (f *scanJobsFake) Submit(_ context.Context, req domain.ScanRequest) (*domain.ScanJob, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	job := &domain.ScanJob{ID: "job-1", Mode: req.Mode, Status: domain.ScanJobQueued}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *scanJobsFake) GetByID(_ context.Context, id string) (*domain.ScanJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrScanJobNotFound, "get scan job", errors.New("id="+id))
	}
	return job, nil
}

func newTestHandler(cfg config.Config, opts ...Option) http.Handler {
	return NewRouter(cfg, &scannerFake{}, &expiryFake{}, exporterFake{}, opts...).Handler()
}
