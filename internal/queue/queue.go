package queue

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// SendJob is the payload published for each queued campaign email.
type SendJob struct {
	QueueItemID uuid.UUID `json:"queue_item_id"`
	CampaignID  uuid.UUID `json:"campaign_id"`
}

// Queue interface
type Queue interface {
	Publish(topic string, job SendJob) error
	Subscribe(topic string, handler func(job SendJob) error) error
}

// InMemoryQueue is an in-memory queue with retry, used when no broker
// is configured and in tests.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(job SendJob) error
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(job SendJob) error),
	}
}

// jobEnvelope wraps a send job with retry info
type jobEnvelope struct {
	Job        SendJob
	RetryCount int
	MaxRetries int
}

// Publish sends a job to all subscribers
func (q *InMemoryQueue) Publish(topic string, job SendJob) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	envelope := jobEnvelope{
		Job:        job,
		RetryCount: 0,
		MaxRetries: 3,
	}

	for _, handler := range handlers {
		go q.processJob(handler, envelope)
	}

	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(job SendJob) error, envelope jobEnvelope) {
	for envelope.RetryCount <= envelope.MaxRetries {
		err := handler(envelope.Job)
		if err == nil {
			return // ACK
		}

		envelope.RetryCount++
		log.Warnf("⚠️ Send job failed (attempt %d/%d) for item %s: %v", envelope.RetryCount, envelope.MaxRetries, envelope.Job.QueueItemID, err)

		if envelope.RetryCount > envelope.MaxRetries {
			log.Errorf("❌ Send job permanently failed after %d attempts: item %s", envelope.MaxRetries, envelope.Job.QueueItemID)
			return // No requeue
		}

		// Exponential backoff before retry
		time.Sleep(time.Duration(envelope.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(job SendJob) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}
