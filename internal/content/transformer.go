package content

// Transformer modifies content, returning modified content or an error.
type Transformer interface {
	// Transform modifies input, returning modified content or an error.
	Transform(input []byte) ([]byte, error)
}

// TransformerFunc is a [Transformer] that can be represented just by the
// [Transform] method.
type TransformerFunc func(input []byte) ([]byte, error)

// Transform satisfies [Transformer].
func (fn TransformerFunc) Transform(input []byte) ([]byte, error) { return fn(input) }

// Chain runs input through each transformer in order, stopping at the first
// error.
func Chain(transformers ...Transformer) TransformerFunc {
	return func(input []byte) (out []byte, err error) {
		out = input
		for _, transformer := range transformers {
			if out, err = transformer.Transform(out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}
