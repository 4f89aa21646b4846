package activity

import (
	"encoding/json"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/repository"
	"github.com/prodyhq/prody/internal/stream"
)

// Topic carries freshly recorded audit entries to the realtime fan-out
// worker.
const Topic = "activity.logged"

// RecorderInterface lets handlers record audit entries without caring
// about the pipeline behind them.
type RecorderInterface interface {
	Record(entry *models.ActivityLog, tx *sqlx.Tx) (*models.ActivityLog, error)
}

// Recorder persists an audit entry and hands the enriched row to the
// stream so connected organization members see it without polling.
type Recorder struct {
	repo        repository.ActivityRepository
	producer    stream.Producer
	wg          *sync.WaitGroup
	reportError func(err error)
}

func NewRecorder(repo repository.ActivityRepository, producer stream.Producer, wg *sync.WaitGroup, reportError func(err error)) *Recorder {
	return &Recorder{
		repo:        repo,
		producer:    producer,
		wg:          wg,
		reportError: reportError,
	}
}

// Record writes the entry (inside tx when given) and publishes the
// saved row, actor name and organization already resolved, in the
// background. Publish failures are reported, never surfaced to the
// request that triggered the entry.
func (r *Recorder) Record(entry *models.ActivityLog, tx *sqlx.Tx) (*models.ActivityLog, error) {
	saved, err := r.repo.Insert(entry, tx)
	if err != nil {
		return nil, err
	}

	r.publish(saved)

	return saved, nil
}

func (r *Recorder) publish(saved *models.ActivityLog) {
	message, err := json.Marshal(saved)
	if err != nil {
		r.reportError(err)
		return
	}

	if r.producer == nil {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		if err := r.producer.ProduceMessage(Topic, string(message)); err != nil {
			r.reportError(err)
		}
	}()
}
