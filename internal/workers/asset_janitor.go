// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-account-keeper/internal/adapter"
	"github.com/MKhiriev/go-account-keeper/internal/logger"
	"github.com/cenkalti/backoff/v4"
)

const (
	defaultJanitorQueueSize = 256

	janitorInitialInterval = 500 * time.Millisecond
	janitorMaxInterval     = 30 * time.Second
	janitorMaxElapsedTime  = 10 * time.Minute
)

// AssetJanitor deletes provider assets that no image record points to. The
// image service hands them over when its own cleanup delete fails; the
// janitor retries with exponential backoff.
type AssetJanitor struct {
	storage    adapter.ImageStorage
	queue      chan string
	newBackOff func() backoff.BackOff
	logger     *logger.Logger
}

func NewAssetJanitor(storage adapter.ImageStorage, queueSize int, logger *logger.Logger) *AssetJanitor {
	if queueSize <= 0 {
		queueSize = defaultJanitorQueueSize
	}

	return &AssetJanitor{
		storage: storage,
		queue:   make(chan string, queueSize),
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = janitorInitialInterval
			bo.MaxInterval = janitorMaxInterval
			bo.MaxElapsedTime = janitorMaxElapsedTime
			return bo
		},
		logger: logger,
	}
}

// Enqueue schedules providerID for deletion without blocking. It returns
// false when the queue is full.
func (j *AssetJanitor) Enqueue(providerID string) bool {
	if providerID == "" {
		return false
	}

	select {
	case j.queue <- providerID:
		return true
	default:
		j.logger.Warn().Str("provider_id", providerID).Msg("asset janitor queue is full")
		return false
	}
}

// Run deletes queued assets one by one until ctx is cancelled. Assets still
// queued at that point stay at the provider and are logged.
func (j *AssetJanitor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			j.logRemaining()
			return nil
		case providerID := <-j.queue:
			j.delete(ctx, providerID)
		}
	}
}

func (j *AssetJanitor) delete(ctx context.Context, providerID string) {
	op := func() error {
		err := j.storage.Delete(ctx, providerID)
		if isPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		j.logger.Debug().Err(err).Str("provider_id", providerID).Dur("retry_in", wait).Msg("asset delete failed")
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(j.newBackOff(), ctx), notify); err != nil {
		j.logger.Err(err).Str("func", "*AssetJanitor.delete").Str("provider_id", providerID).Msg("giving up on orphaned asset")
		return
	}

	j.logger.Info().Str("provider_id", providerID).Msg("orphaned asset deleted")
}

func (j *AssetJanitor) logRemaining() {
	for {
		select {
		case providerID := <-j.queue:
			j.logger.Warn().Str("provider_id", providerID).Msg("orphaned asset left at provider on shutdown")
		default:
			return
		}
	}
}

// isPermanent reports provider rejections that a retry cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, adapter.ErrBadRequest) ||
		errors.Is(err, adapter.ErrUnauthorized) ||
		errors.Is(err, adapter.ErrForbidden)
}
