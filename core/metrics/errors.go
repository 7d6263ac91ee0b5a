package metrics

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateMetricName is returned when a metric name is already
	// registered anywhere in the registry.
	ErrDuplicateMetricName = errors.New("duplicate metric name")
	// ErrMetricNotFound is returned by lookups for unknown metric names.
	ErrMetricNotFound = errors.New("metric not found")
	// ErrIllegalSensorHierarchy is returned when a requested parent set
	// would introduce a diamond into the sensor DAG.
	ErrIllegalSensorHierarchy = errors.New("illegal sensor hierarchy")
	// ErrInvalidConfig is returned for non-positive window, sample or bucket
	// parameters.
	ErrInvalidConfig = errors.New("invalid metric config")
)

// QuotaViolationError is returned by Sensor.Record and Sensor.RecordValue
// when a quota bound is exceeded. The violating observation has already been
// persisted by the time the error is returned; quotas signal, they do not
// roll back.
type QuotaViolationError struct {
	Metric string
	Quota  Quota
	Value  float64
}

func (e *QuotaViolationError) Error() string {
	return fmt.Sprintf("quota violated for metric %q: value %v not %s", e.Metric, e.Value, e.Quota)
}
