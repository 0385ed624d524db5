package reconciler

import (
	"fmt"
	"slices"
)

const DefaultPartialThreshold = 3

type options struct {
	partialThreshold int
	keyFeatures      []int
}

type Option func(*options)

// WithPartialThreshold sets the number of differing features at which a joined pair
// stops being a partial match and is reported as a high-discrepancy match.
func WithPartialThreshold(threshold int) Option {
	return func(o *options) {
		o.partialThreshold = threshold
	}
}

// WithKeyFeatures sets the 0-based feature indices that identify a transaction.
func WithKeyFeatures(indices ...int) Option {
	return func(o *options) {
		o.keyFeatures = append([]int{}, indices...)
	}
}

func newOptions(opts []Option) options {
	o := options{partialThreshold: DefaultPartialThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DefaultKeyFeatures returns features 1 and 2 when at least one feature is left to
// compare outside the key. With one or two features the key is feature 1 alone,
// otherwise partial matches could never occur.
func DefaultKeyFeatures(featureCount int) []int {
	switch {
	case featureCount <= 0:
		return []int{}
	case featureCount <= 2:
		return []int{0}
	default:
		return []int{0, 1}
	}
}

func (o options) resolve(featureCount int) ([]int, error) {
	if o.partialThreshold < 1 {
		return nil, &ConfigurationError{
			Message: fmt.Sprintf("partial threshold must be at least 1, got %d", o.partialThreshold),
		}
	}

	if o.keyFeatures == nil {
		return DefaultKeyFeatures(featureCount), nil
	}

	if len(o.keyFeatures) == 0 {
		return nil, &ConfigurationError{Message: "key features cannot be empty"}
	}

	key := make([]int, 0, len(o.keyFeatures))
	for _, idx := range o.keyFeatures {
		if idx < 0 || idx >= featureCount {
			return nil, &ConfigurationError{
				Message: fmt.Sprintf("key feature %d out of range: mapping has %d valid features", idx+1, featureCount),
			}
		}
		if !slices.Contains(key, idx) {
			key = append(key, idx)
		}
	}
	slices.Sort(key)
	return key, nil
}
