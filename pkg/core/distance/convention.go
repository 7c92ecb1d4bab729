package distance

import "fmt"

// Convention decides how a similarity metric is presented to the clustering
// engines, which always treat the smallest score as the closest pair.
type Convention string

const (
	// Literal passes every metric through unchanged. For a similarity such as
	// Pearson this makes the engines group the least correlated items first,
	// which matches the historical output of the tool.
	Literal Convention = "literal"
	// Corrected turns a similarity s into the distance 1 - s. Distance metrics
	// are not affected.
	Corrected Convention = "corrected"
)

// ParseConvention validates a convention name. The empty string means Literal.
func ParseConvention(name string) (Convention, error) {
	switch Convention(name) {
	case "", Literal:
		return Literal, nil
	case Corrected:
		return Corrected, nil
	default:
		return "", fmt.Errorf("distance: unknown convention '%s'", name)
	}
}

// AsDistance wraps a similarity so that lower means more alike.
func AsDistance(fn Func) Func {
	return func(v1, v2 []float64) (float64, error) {
		s, err := fn(v1, v2)
		if err != nil {
			return 0, err
		}
		return 1.0 - s, nil
	}
}

// Resolve looks a metric up once and applies the convention to it. The result
// is meant to be handed to the clustering engines for the whole run.
func Resolve(metric Metric, conv Convention) (Func, error) {
	m, err := Parse(string(metric))
	if err != nil {
		return nil, err
	}
	fn, kind, err := Get(m)
	if err != nil {
		return nil, err
	}
	switch conv {
	case "", Literal:
		return fn, nil
	case Corrected:
		if kind == Similarity {
			return AsDistance(fn), nil
		}
		return fn, nil
	default:
		return nil, fmt.Errorf("distance: unknown convention '%s'", conv)
	}
}
