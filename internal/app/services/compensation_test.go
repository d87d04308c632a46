package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

func TestCompensatorRunsInReverseOrder(t *testing.T) {
	var order []string
	comp := NewCompensator(zerolog.Nop(), nil)
	comp.Add("first", func(context.Context) error { order = append(order, "first"); return nil })
	comp.Add("second", func(context.Context) error { order = append(order, "second"); return nil })
	comp.Add("third", func(context.Context) error { order = append(order, "third"); return nil })

	cause := errors.New("insert failed")
	err := comp.Run(context.Background(), cause)

	assert.Same(t, cause, err)
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, 0, comp.Len())
}

func TestCompensatorKeepsOriginalErrorWhenUndoFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ran := 0
	comp := NewCompensator(zerolog.Nop(), m)
	comp.Add("identity.delete", func(context.Context) error { ran++; return nil })
	comp.Add("profile.delete", func(context.Context) error { ran++; return errors.New("store down") })

	cause := errors.New("student insert failed")
	err := comp.Run(context.Background(), cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, 2, ran, "a failing undo step must not stop the others")

	count, gatherErr := testutil.GatherAndCount(reg, "uniportal_compensations_total")
	require.NoError(t, gatherErr)
	assert.Equal(t, 2, count)
}

func TestCompensatorRunsWithCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var undoCtxErr error
	comp := NewCompensator(zerolog.Nop(), nil)
	comp.Add("identity.delete", func(ctx context.Context) error {
		undoCtxErr = ctx.Err()
		return nil
	})

	comp.Run(ctx, errors.New("boom"))
	assert.NoError(t, undoCtxErr)
}
