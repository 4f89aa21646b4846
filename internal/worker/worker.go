package worker

import (
	"context"

	"github.com/prodyhq/prody/internal/realtime"
	"github.com/prodyhq/prody/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	Hub         realtime.Broadcaster
	Ctx         context.Context
}

const (
	// activityFanoutGroupID is used by workers that push freshly recorded
	// audit entries to connected organization members.
	activityFanoutGroupID = "activity-fanout-group"
)

// Workers typically need the kafka stream plus whatever sink they feed;
// worker-specific dependencies can be passed as arguments to the worker.
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		Hub:         wk.Hub,
		Ctx:         wk.Ctx,
	}
}
