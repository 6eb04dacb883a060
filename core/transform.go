package core

// Transformer mutates a Conversation in place.
type Transformer interface {
	Transform(c *Conversation) error
}

// Chain applies transformers in order, stopping at the first error.
func Chain(c *Conversation, transformers ...Transformer) error {
	for _, tr := range transformers {
		if err := tr.Transform(c); err != nil {
			return err
		}
	}
	return nil
}
