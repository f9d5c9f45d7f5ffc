package feeder

import (
	"context"
	"sync"

	"souk/services/ingestion/internal/models"

	"go.uber.org/zap"
)

func (f *Feeder) startWorkers(ctx context.Context, postingChan <-chan *models.JobPosting, onResult func(Result)) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < f.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for posting := range postingChan {
				result := f.send(ctx, posting)
				if result.Err != nil {
					f.logger.Error("failed to feed job posting",
						zap.String("job_id", posting.JobID),
						zap.Error(result.Err))
				}
				onResult(result)
			}
		}()
	}
	return &wg
}
