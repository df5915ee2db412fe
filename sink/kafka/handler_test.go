package kafka_test

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/teenjuna/capacitor"
	"github.com/teenjuna/capacitor/codec/json"
	"github.com/teenjuna/capacitor/internal/testing/require"
	"github.com/teenjuna/capacitor/sink/kafka"
)

type Event struct {
	ID   string
	Kind string
}

func TestHandler(t *testing.T) {
	producer := newProducer(t)

	events := []Event{{ID: "1", Kind: "a"}, {ID: "2", Kind: "b"}, {ID: "3", Kind: "a"}}

	expected := make(map[string]string)
	batches := make(map[string]struct{})
	for _, event := range events {
		value := `{"ID":"` + event.ID + `","Kind":"` + event.Kind + `"}` + "\n"
		expected[event.ID] = value
		id := event.ID
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(
			func(msg *sarama.ProducerMessage) error {
				key, err := msg.Key.Encode()
				if err != nil {
					return err
				}
				if string(key) != id {
					return errors.New("unexpected key " + string(key))
				}
				value, err := msg.Value.Encode()
				if err != nil {
					return err
				}
				if string(value) != expected[id] {
					return errors.New("unexpected value " + string(value))
				}
				if msg.Topic != "events" {
					return errors.New("unexpected topic " + msg.Topic)
				}
				if len(msg.Headers) != 1 || string(msg.Headers[0].Key) != kafka.BatchHeader {
					return errors.New("missing batch header")
				}
				batches[string(msg.Headers[0].Value)] = struct{}{}
				return nil
			},
		)
	}

	cptor := capacitor.New(len(events), kafka.Handler(
		producer,
		"events",
		json.New[Event](),
		func(e Event) string { return e.ID },
	))

	for _, event := range events {
		require.Nil(t, cptor.Push(event))
	}
	require.Equal(t, cptor.Charges(), 0)
	require.Equal(t, len(batches), 1)
}

func TestHandlerSendError(t *testing.T) {
	producer := newProducer(t)

	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	cptor := capacitor.New(1, kafka.Handler[string](producer, "events", json.New[string](), nil))

	err := cptor.Push("event")
	require.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.Equal(t, cptor.Charges(), 0)
}

func TestHandlerEmptyBatch(t *testing.T) {
	producer := newProducer(t)

	cptor := capacitor.New(1, kafka.Handler[string](producer, "events", json.New[string](), nil))
	require.Nil(t, cptor.Trigger())
}

func TestHandlerValidation(t *testing.T) {
	producer := newProducer(t)

	require.PanicWithError(t, "producer can't be nil", func() {
		kafka.Handler[string](nil, "events", json.New[string](), nil)
	})
	require.PanicWithError(t, "topic can't be blank", func() {
		kafka.Handler[string](producer, "", json.New[string](), nil)
	})
	require.PanicWithError(t, "codec can't be nil", func() {
		kafka.Handler[string](producer, "events", nil, nil)
	})
}

func TestNewProducerWithoutBrokers(t *testing.T) {
	_, err := kafka.NewProducer(nil)
	require.NotNil(t, err)
}

// newProducer returns a mock producer that fails the test if some expectations are left unmet.
func newProducer(t *testing.T) *mocks.SyncProducer {
	cfg := mocks.NewTestConfig()
	cfg.Producer.Return.Successes = true

	producer := mocks.NewSyncProducer(t, cfg)
	t.Cleanup(func() {
		require.Nil(t, producer.Close())
	})

	return producer
}
