package metrics

import "fmt"

// Quota is a bound on a measured value, checked after each record. The bound
// itself is non-violating: UpperBound(5) accepts 5.0 and rejects 5.01.
type Quota struct {
	bound float64
	upper bool
}

// UpperBound returns a quota violated by values strictly greater than limit.
func UpperBound(limit float64) Quota {
	return Quota{bound: limit, upper: true}
}

// LowerBound returns a quota violated by values strictly less than limit.
func LowerBound(limit float64) Quota {
	return Quota{bound: limit, upper: false}
}

// Acceptable returns true if value does not violate the quota.
func (q Quota) Acceptable(value float64) bool {
	if q.upper {
		return value <= q.bound
	}
	return value >= q.bound
}

// Bound returns the quota limit.
func (q Quota) Bound() float64 { return q.bound }

// IsUpperBound returns true for quotas created with UpperBound.
func (q Quota) IsUpperBound() bool { return q.upper }

func (q Quota) String() string {
	if q.upper {
		return fmt.Sprintf("<= %v", q.bound)
	}
	return fmt.Sprintf(">= %v", q.bound)
}
