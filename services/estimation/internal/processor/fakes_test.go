package processor

import (
	"context"
	"sync"
	"time"

	"souk/common/cache"
	domainerrors "souk/services/estimation/internal/errors"
	"souk/services/estimation/internal/models"
)

type fakeStore struct {
	mu       sync.Mutex
	saved    []models.JobEstimate
	saveErr  error
	latest   *models.JobEstimate
	loadErr  error
	rankings map[string][]models.Offer
	rankErr  error
}

func (f *fakeStore) SaveEstimate(ctx context.Context, e models.JobEstimate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, e)
	return nil
}

func (f *fakeStore) LatestEstimate(ctx context.Context, jobID string) (*models.JobEstimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.latest != nil && f.latest.JobID == jobID {
		e := *f.latest
		return &e, nil
	}
	return nil, domainerrors.NotFound("no estimate for job "+jobID, nil)
}

func (f *fakeStore) SaveRanking(ctx context.Context, jobID string, offers []models.Offer, rankedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rankErr != nil {
		return f.rankErr
	}
	if f.rankings == nil {
		f.rankings = make(map[string][]models.Offer)
	}
	f.rankings[jobID] = offers
	return nil
}

func (f *fakeStore) savedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*models.JobEstimate
	err       error
}

func (f *fakePublisher) PublishEstimate(ctx context.Context, e *models.JobEstimate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, e)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

// brokenCache fails every operation.
type brokenCache struct{ err error }

func (b brokenCache) Set(context.Context, string, interface{}, time.Duration) error { return b.err }
func (b brokenCache) Get(context.Context, string, interface{}) error                { return b.err }
func (b brokenCache) Delete(context.Context, string) error                          { return b.err }
func (b brokenCache) Clear(context.Context) error                                   { return b.err }
func (b brokenCache) Close() error                                                  { return nil }

var _ cache.Cache = brokenCache{}
