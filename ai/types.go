package ai

// Completion is the model's answer to a single exchange.
type Completion struct {
	Text string
}

// CompletionOptions are per-call overrides of the configured sampling parameters.
// Nil fields keep the configured value.
type CompletionOptions struct {
	Temperature *float64
	MaxTokens   *int
	// Truncate trims the user prompt to the configured prompt token budget.
	Truncate bool
}

// CompletionOption mutates CompletionOptions.
type CompletionOption func(*CompletionOptions)

// WithCallTemperature overrides the temperature for one call.
func WithCallTemperature(temperature float64) CompletionOption {
	return func(o *CompletionOptions) {
		o.Temperature = &temperature
	}
}

// WithCallMaxTokens overrides the answer length limit for one call.
func WithCallMaxTokens(max int) CompletionOption {
	return func(o *CompletionOptions) {
		o.MaxTokens = &max
	}
}

// WithTruncation trims the user prompt to the configured token budget.
func WithTruncation() CompletionOption {
	return func(o *CompletionOptions) {
		o.Truncate = true
	}
}

// ApplyCompletionOptions folds opts into a CompletionOptions value.
func ApplyCompletionOptions(opts ...CompletionOption) CompletionOptions {
	var o CompletionOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
