package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	closed    bool
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	f.mu.Lock()
	if len(f.queue) > 0 {
		m := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeReader) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeReader) commits() []kafka.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]kafka.Message(nil), f.committed...)
}

func msg(partition int, offset int64) kafka.Message {
	return kafka.Message{Partition: partition, Offset: offset, Value: []byte(fmt.Sprintf("%d/%d", partition, offset))}
}

func TestConsumer_FailedMessageIsRetriedBeforeLaterOffsets(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{msg(0, 0), msg(0, 1), msg(1, 0)}}
	c := newConsumer(r, 2, zaptest.NewLogger(t))
	c.retryBase = time.Millisecond

	var mu sync.Mutex
	var seen []string
	failures := 2
	h := func(_ context.Context, m kafka.Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, string(m.Value))
		if m.Partition == 0 && m.Offset == 0 && failures > 0 {
			failures--
			return errors.New("postgres unavailable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	require.Eventually(t, func() bool { return len(r.commits()) == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	var p0 []int64
	for _, m := range r.commits() {
		if m.Partition == 0 {
			p0 = append(p0, m.Offset)
		}
	}
	assert.Equal(t, []int64{0, 1}, p0, "partition 0 commits stay in offset order")

	mu.Lock()
	defer mu.Unlock()
	var p0seen []string
	for _, v := range seen {
		if v[0] == '0' {
			p0seen = append(p0seen, v)
		}
	}
	assert.Equal(t, []string{"0/0", "0/0", "0/0", "0/1"}, p0seen)
	assert.True(t, r.closed)
}

func TestConsumer_StopsRetryingOnShutdownWithoutCommit(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{msg(0, 7), msg(0, 8)}}
	c := newConsumer(r, 1, zaptest.NewLogger(t))
	c.retryBase = time.Millisecond

	attempts := make(chan struct{}, 100)
	h := func(_ context.Context, m kafka.Message) error {
		select {
		case attempts <- struct{}{}:
		default:
		}
		return errors.New("still down")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx, h) }()

	for i := 0; i < 3; i++ {
		select {
		case <-attempts:
		case <-time.After(2 * time.Second):
			t.Fatal("handler was not retried")
		}
	}
	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, r.commits(), "nothing past the failing offset is committed")
}
