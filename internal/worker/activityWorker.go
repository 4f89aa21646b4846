package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/prodyhq/prody/internal/activity"
	"github.com/prodyhq/prody/internal/models"
	"github.com/prodyhq/prody/internal/realtime"
	"github.com/prodyhq/prody/internal/stream"
)

// ActivityFanoutWorker consumes recorded audit entries and pushes each
// one to the actor's organization room. Entries from users without an
// organization have nowhere to go and are skipped. Delivery is best
// effort: the database row is the system of record, subscribers that
// were offline simply miss the push.
func (wk *Worker) ActivityFanoutWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: activityFanoutGroupID,
		Topic:   activity.Topic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}

	for {
		select {
		case <-wk.Ctx.Done():
			consumer.Close()
			return
		default:
		}

		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			var entry models.ActivityLog
			if err := json.Unmarshal(e.Value, &entry); err != nil {
				log.Printf("Error decoding activity entry: %v", err)
				continue
			}

			if entry.OrganizationID == nil {
				continue
			}

			wk.Hub.SendToOrg(*entry.OrganizationID, realtime.EventNewActivityLog, entry)
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}
