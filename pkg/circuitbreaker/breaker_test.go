package circuitbreaker

import (
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerTripsAtFailureThreshold(t *testing.T) {
	cb := New("exchange_rates", Defaults())

	boom := errors.New("bad gateway")
	for i := 0; i < 3; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, boom })
		require.ErrorIs(t, err, boom)
	}

	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerStaysClosedBelowMinRequests(t *testing.T) {
	cb := New("gold_prices", Defaults())

	_, err := cb.Execute(func() (interface{}, error) { return nil, errors.New("bad gateway") })
	require.Error(t, err)

	_, err = cb.Execute(func() (interface{}, error) { return "ok", nil })
	assert.NoError(t, err)
}
