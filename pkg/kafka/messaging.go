package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message wraps a consumed Kafka record together with the client it came
// from, so the record can be decoded and committed after processing.
type Message struct {
	msg    kafka.Message
	ctx    context.Context
	client *KafkaClient
}

// Key returns the record key.
func (m *Message) Key() string {
	return string(m.msg.Key)
}

// Body returns the raw record value. For records written through a schema
// registry serializer this includes the wire envelope.
func (m *Message) Body() []byte {
	return m.msg.Value
}

// Header returns the record headers as a map.
func (m *Message) Header() map[string]string {
	headers := make(map[string]string, len(m.msg.Headers))
	for _, header := range m.msg.Headers {
		headers[header.Key] = string(header.Value)
	}
	return headers
}

// Topic returns the topic the record was read from.
func (m *Message) Topic() string {
	return m.msg.Topic
}

// Partition returns the partition the record was read from.
func (m *Message) Partition() int {
	return m.msg.Partition
}

// Offset returns the record offset within its partition.
func (m *Message) Offset() int64 {
	return m.msg.Offset
}

// Decode deserializes the record value into v using the client's
// deserializer.
func (m *Message) Decode(ctx context.Context, v any) error {
	m.client.mu.RLock()
	deserializer := m.client.deserializer
	m.client.mu.RUnlock()

	if deserializer == nil {
		return ErrNoDeserializer
	}
	return deserializer.Deserialize(ctx, m.msg.Value, v)
}

// CommitMsg marks the record as processed. Without a consumer group there
// are no offsets to commit and the call is a no-op.
func (m *Message) CommitMsg() error {
	if m.client.cfg.GroupID == "" {
		return nil
	}

	m.client.mu.RLock()
	reader := m.client.reader
	m.client.mu.RUnlock()

	if reader == nil {
		return ErrClientClosed
	}
	return reader.CommitMessages(m.ctx, m.msg)
}

// Publish serializes value and writes it to the configured topic. Values
// pass through the serializer when one is set. Without a serializer only
// []byte and string values are accepted. Headers are attached to the
// record as-is, which is how trace context travels with a message.
func (k *KafkaClient) Publish(ctx context.Context, key string, value any, headers map[string]string) error {
	k.mu.RLock()
	writer := k.writer
	k.mu.RUnlock()

	if writer == nil {
		if k.cfg.IsConsumer {
			return ErrNotProducer
		}
		return ErrClientClosed
	}

	data, err := k.encode(value)
	if err != nil {
		k.observer.Publish(k.cfg.Topic, 0, err)
		k.logError("Failed to serialize message", err, map[string]interface{}{
			"topic": k.cfg.Topic,
		})
		return err
	}

	msg := kafka.Message{
		Value:   data,
		Headers: recordHeaders(headers),
	}
	if key != "" {
		msg.Key = []byte(key)
	}

	start := time.Now()
	err = writer.WriteMessages(ctx, msg)
	k.observer.Publish(k.cfg.Topic, time.Since(start), err)
	if err != nil {
		k.logError("Failed to publish message", err, map[string]interface{}{
			"topic": k.cfg.Topic,
		})
		return fmt.Errorf("kafka: publish to %s: %w", k.cfg.Topic, err)
	}

	k.logDebug("Published message", map[string]interface{}{
		"topic": k.cfg.Topic,
		"bytes": len(data),
	})
	return nil
}

// encode turns a value into the record body. The serializer wins when set,
// raw bytes and strings pass through untouched.
func (k *KafkaClient) encode(value any) ([]byte, error) {
	k.mu.RLock()
	serializer := k.serializer
	k.mu.RUnlock()

	if serializer != nil {
		return serializer.Serialize(value)
	}

	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot publish %T: %w", value, ErrNoSerializer)
	}
}

func recordHeaders(headers map[string]string) []kafka.Header {
	if len(headers) == 0 {
		return nil
	}
	out := make([]kafka.Header, 0, len(headers))
	for key, value := range headers {
		out = append(out, kafka.Header{Key: key, Value: []byte(value)})
	}
	return out
}

// Consume starts a single fetch loop and returns the channel messages are
// delivered on. The channel closes when ctx is canceled or the client
// shuts down. The WaitGroup tracks the fetch goroutine, so callers can
// wait for a clean exit.
func (k *KafkaClient) Consume(ctx context.Context, wg *sync.WaitGroup) <-chan *Message {
	return k.ConsumeParallel(ctx, wg, 1)
}

// ConsumeParallel runs the given number of fetch workers against the
// shared reader and delivers all messages on one channel. The reader is
// safe for concurrent fetches, so this raises throughput when processing
// dominates.
func (k *KafkaClient) ConsumeParallel(ctx context.Context, wg *sync.WaitGroup, workers int) <-chan *Message {
	out := make(chan *Message)

	k.mu.RLock()
	reader := k.reader
	k.mu.RUnlock()

	if reader == nil {
		if !k.cfg.IsConsumer {
			k.logError("Consume called on a producer client", ErrNotConsumer, nil)
		} else {
			k.logError("Consume called on a closed client", ErrClientClosed, nil)
		}
		close(out)
		return out
	}

	if workers < 1 {
		workers = 1
	}

	var fetchers sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		fetchers.Add(1)
		go func() {
			defer wg.Done()
			defer fetchers.Done()
			k.fetchLoop(ctx, reader, out)
		}()
	}

	// Close the channel once every fetch worker has returned.
	go func() {
		fetchers.Wait()
		close(out)
	}()

	return out
}

func (k *KafkaClient) fetchLoop(ctx context.Context, reader *kafka.Reader, out chan<- *Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-k.shutdownSignal:
			return
		default:
		}

		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			// The reader reports EOF once it is closed.
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			k.observer.ConsumeError(k.cfg.Topic)
			k.logError("Failed to fetch message", err, map[string]interface{}{
				"topic": k.cfg.Topic,
			})
			continue
		}

		k.observer.Consume(k.cfg.Topic, len(msg.Value))

		select {
		case out <- &Message{msg: msg, ctx: ctx, client: k}:
		case <-ctx.Done():
			return
		case <-k.shutdownSignal:
			return
		}
	}
}

// GracefulShutdown signals the fetch loops to stop and closes the writer
// and reader. Safe to call more than once.
func (k *KafkaClient) GracefulShutdown() error {
	k.closeShutdownOnce.Do(func() {
		close(k.shutdownSignal)
	})

	k.mu.Lock()
	defer k.mu.Unlock()

	var lastErr error
	if k.writer != nil {
		if err := k.writer.Close(); err != nil {
			k.logError("Failed to close Kafka writer", err, nil)
			lastErr = err
		}
		k.writer = nil
	}
	if k.reader != nil {
		if err := k.reader.Close(); err != nil {
			k.logError("Failed to close Kafka reader", err, nil)
			lastErr = err
		}
		k.reader = nil
	}

	k.logInfo("Kafka client shut down", map[string]interface{}{
		"topic": k.cfg.Topic,
	})
	return lastErr
}
