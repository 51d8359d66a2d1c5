package kafka

import (
	"testing"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	msgs, err := Encode([]Event{
		{Key: "a", Value: map[string]int{"returned": 3}},
		{Key: "b", Value: "zero"},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, []byte("a"), msgs[0].Key)
	assert.JSONEq(t, `{"returned":3}`, string(msgs[0].Value))
	assert.Equal(t, `"zero"`, string(msgs[1].Value))
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	_, err := Encode([]Event{{Key: "bad", Value: make(chan int)}})
	assert.Error(t, err)
}

func TestNewProducer(t *testing.T) {
	p := NewProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "search-events", BatchSize: 10})
	assert.Equal(t, "search-events", p.writer.Topic)
	assert.Equal(t, 10, p.writer.BatchSize)
	require.NoError(t, p.Close())
}
