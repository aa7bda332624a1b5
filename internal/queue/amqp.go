package queue

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// SendTopic is the broker queue campaign send jobs go through.
const SendTopic = "campaign_sends"

const maxDeliveries = 3

// AMQPQueue publishes and consumes send jobs over RabbitMQ. Queues are
// declared durable and consumed with manual acks; failed jobs are
// requeued up to maxDeliveries times via the x-retry-count header.
type AMQPQueue struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

var _ Queue = (*AMQPQueue)(nil)

func NewAMQPQueue(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	return &AMQPQueue{conn: conn, channel: ch}, nil
}

func (q *AMQPQueue) Close() {
	q.channel.Close()
	q.conn.Close()
}

func (q *AMQPQueue) declare(topic string) (amqp.Queue, error) {
	return q.channel.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
}

func (q *AMQPQueue) Publish(topic string, job SendJob) error {
	if _, err := q.declare(topic); err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}

	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return q.channel.Publish(
		"",    // exchange
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (q *AMQPQueue) Subscribe(topic string, handler func(job SendJob) error) error {
	queue, err := q.declare(topic)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}

	msgs, err := q.channel.Consume(
		queue.Name,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	go func() {
		for d := range msgs {
			var job SendJob
			if err := json.Unmarshal(d.Body, &job); err != nil {
				log.Warnln("⚠️ Invalid send job payload:", err)
				d.Ack(false)
				continue
			}

			if err := handler(job); err != nil {
				log.Warnf("⚠️ Send job failed for item %s: %v", job.QueueItemID, err)
				if retryCount(d.Headers) < maxDeliveries {
					d.Nack(false, true) // requeue
					continue
				}
				log.Errorf("❌ Send job dropped after %d deliveries: item %s", maxDeliveries, job.QueueItemID)
			}

			d.Ack(false)
		}
	}()

	return nil
}

func retryCount(headers amqp.Table) int {
	if headers == nil {
		return 0
	}
	switch v := headers["x-retry-count"].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return 0
}
