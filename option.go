package lotsizing

import "fmt"

type Option func(*Evaluator) error

func WithLogger(logger Logger) Option {
	return func(e *Evaluator) error {
		e.logger = logger

		return nil
	}
}

func WithVariant(variant Variant) Option {
	return func(e *Evaluator) error {
		if variant != Flow && variant != Assignment {
			return fmt.Errorf("unknown formulation variant %v", variant)
		}
		e.variant = variant

		return nil
	}
}

// WithConfig replaces DefaultConfig for every solve of the batch.
func WithConfig(cfg Config) Option {
	return func(e *Evaluator) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		e.config = cfg

		return nil
	}
}

func WithBigM(m BigM) Option {
	return func(e *Evaluator) error {
		e.bigM = m

		return nil
	}
}

// WithWorkers evaluates up to n instances at the same time. Row order is not
// affected.
func WithWorkers(n int) Option {
	return func(e *Evaluator) error {
		if n < 1 {
			return fmt.Errorf("worker count must be positive, got %d", n)
		}
		e.workers = n

		return nil
	}
}

// WithSolutionCheck verifies every integer incumbent against its formulation
// with the given tolerance. Violations fail the instance.
func WithSolutionCheck(tol float64) Option {
	return func(e *Evaluator) error {
		if tol < 0 {
			return fmt.Errorf("negative tolerance %g", tol)
		}
		e.check = true
		e.checkTol = tol

		return nil
	}
}

// WithSystemInfo attaches a host description to the produced batches.
func WithSystemInfo(info SystemInfo) Option {
	return func(e *Evaluator) error {
		e.system = info

		return nil
	}
}
