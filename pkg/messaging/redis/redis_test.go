package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-schedule/pkg/circuitbreaker"
	"github.com/jwalitptl/clinic-schedule/pkg/logger"
	"github.com/jwalitptl/clinic-schedule/pkg/metrics"
)

func TestPublish_UnreachableOpensBreaker(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 100 * time.Millisecond,
	})
	b := NewWithClient(client, logger.Nop(), metrics.New("test"))
	defer b.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		err := b.Publish(ctx, "schedule.conflicts", map[string]string{"provider": "Dr. Chen"})
		require.Error(t, err)
		assert.False(t, errors.Is(err, circuitbreaker.ErrOpen))
	}

	err := b.Publish(ctx, "schedule.conflicts", map[string]string{"provider": "Dr. Chen"})
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestPublish_MarshalError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	b := NewWithClient(client, logger.Nop(), metrics.New("test"))
	defer b.Close()

	err := b.Publish(context.Background(), "schedule.conflicts", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal message")
}
