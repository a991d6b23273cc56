// Package classifier provides the categorical-judgment capability the
// screening stages call into, backed by the GenAI text generation API.
package classifier

import "context"

// Classifier returns raw text for a context description and a payload.
// Implementations never retry; callers interpret the text.
type Classifier interface {
	Classify(ctx context.Context, description string, payload interface{}) (string, error)
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, description string, payload interface{}) (string, error)

func (f Func) Classify(ctx context.Context, description string, payload interface{}) (string, error) {
	return f(ctx, description, payload)
}

// Static answers every call with the same text. Useful for dry runs.
func Static(text string) Classifier {
	return Func(func(context.Context, string, interface{}) (string, error) {
		return text, nil
	})
}
