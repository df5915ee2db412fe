// Package kafka forwards flushed batches to a Kafka topic.
package kafka

import (
	"fmt"
	"slices"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/teenjuna/capacitor"
	"github.com/teenjuna/capacitor/codec"
)

// BatchHeader is the message header holding the ID shared by all messages of one batch.
const BatchHeader = "capacitor-batch"

// Handler returns a capacitor handler that sends every item of a batch as its own message to
// topic. The whole batch is sent with one SendMessages call and every message carries the
// batch ID in [BatchHeader].
//
// key may be nil, in which case messages are sent without a key.
func Handler[Item any](
	producer sarama.SyncProducer,
	topic string,
	codec codec.Codec[Item],
	key func(Item) string,
) capacitor.Handler[Item] {
	if producer == nil {
		panic("producer can't be nil")
	}
	if topic == "" {
		panic("topic can't be blank")
	}
	if codec == nil {
		panic("codec can't be nil")
	}
	return func(batch []Item) error {
		if len(batch) == 0 {
			return nil
		}

		header := sarama.RecordHeader{
			Key:   []byte(BatchHeader),
			Value: []byte(uuid.NewString()),
		}
		msgs := make([]*sarama.ProducerMessage, 0, len(batch))
		for _, item := range batch {
			value, err := codec.Encode(slices.Values([]Item{item}))
			if err != nil {
				return fmt.Errorf("encode item: %w", err)
			}

			msg := &sarama.ProducerMessage{
				Topic:   topic,
				Value:   sarama.ByteEncoder(value),
				Headers: []sarama.RecordHeader{header},
			}
			if key != nil {
				msg.Key = sarama.StringEncoder(key(item))
			}
			msgs = append(msgs, msg)
		}

		if err := producer.SendMessages(msgs); err != nil {
			return fmt.Errorf("send messages: %w", err)
		}

		return nil
	}
}

// NewProducer creates a synchronous producer suitable for [Handler].
func NewProducer(brokers []string, configFuncs ...func(c *sarama.Config)) (sarama.SyncProducer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("no brokers")
	}

	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	for _, cf := range configFuncs {
		if cf != nil {
			cf(cfg)
		}
	}

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}

	return producer, nil
}
