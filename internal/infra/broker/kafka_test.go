package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKafkaPublisher_Config(t *testing.T) {
	p := NewKafkaPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "storefront.notifications"})
	defer p.Close()

	assert.Equal(t, "storefront.notifications", p.Topic())
	assert.Equal(t, 10*time.Second, p.w.WriteTimeout)
}

func TestKafkaPublisher_UnreachableBroker(t *testing.T) {
	p := NewKafkaPublisher(Config{Brokers: []string{"127.0.0.1:1"}, Topic: "t", WriteTimeout: 100 * time.Millisecond})
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	err := p.Publish(ctx, []byte("1"), []byte(`{}`))
	assert.Error(t, err)
}
