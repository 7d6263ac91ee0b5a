package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuotaAcceptable(t *testing.T) {
	t.Run("upper bound", func(t *testing.T) {
		q := UpperBound(5.0)
		assert.True(t, q.IsUpperBound())
		assert.True(t, q.Acceptable(4.9))
		assert.True(t, q.Acceptable(5.0), "equality is non-violating")
		assert.False(t, q.Acceptable(5.01))
	})

	t.Run("lower bound", func(t *testing.T) {
		q := LowerBound(0.0)
		assert.False(t, q.IsUpperBound())
		assert.True(t, q.Acceptable(0.0), "equality is non-violating")
		assert.True(t, q.Acceptable(1.0))
		assert.False(t, q.Acceptable(-0.01))
	})
}

func TestQuotaViolationError(t *testing.T) {
	err := &QuotaViolationError{Metric: "requests.total", Quota: UpperBound(5), Value: 6}
	assert.Contains(t, err.Error(), "requests.total")
	assert.Contains(t, err.Error(), "<= 5")
}
