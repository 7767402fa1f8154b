package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	BookingOperations.WithLabelValues("create", "ok").Inc()
	ListCache.WithLabelValues("hit").Inc()

	n, err := testutil.GatherAndCount(reg, "samara_booking_operations_total", "samara_booking_list_cache_total")
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 2)

	// повторная регистрация в том же реестре — паника MustRegister
	require.Panics(t, func() { RegisterCollectors(reg) })
}
