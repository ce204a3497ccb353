package workers

import (
	"chat-relay/contract"
	"chat-relay/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChannelCapacityWorker_SamplesGauges(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	gauge := mocks.NewMockGauge(ctrl)

	sampled := make(chan struct{}, 1)
	gauge.EXPECT().Cap().Return(10).MinTimes(1)
	gauge.EXPECT().Len().DoAndReturn(func() int {
		select {
		case sampled <- struct{}{}:
		default:
		}
		return 9
	}).MinTimes(1)
	gauge.EXPECT().Name().Return("registry").AnyTimes()

	worker := NewChannelCapacityWorker(logs.GetLoggerFromLevel(slog.LevelDebug),
		[]contract.Gauge{gauge}, 10*time.Millisecond, 80)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	select {
	case <-sampled:
	case <-time.After(time.Second):
		req.Fail("gauge was never sampled")
	}
	cancel()
	req.NoError(<-done)
}

func TestChannelCapacityWorker_ZeroCapacityIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	gauge := mocks.NewMockGauge(ctrl)

	// An unbuffered mailbox has no fill level; Name is never needed
	gauge.EXPECT().Cap().Return(0)
	gauge.EXPECT().Len().Return(0)

	worker := NewChannelCapacityWorker(slog.Default(), nil, time.Second, 80)
	worker.sample(gauge)
}
