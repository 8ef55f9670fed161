package present

// Option applies a configuration option to the Renderer.
type Option func(*Renderer)

// WithColor turns ANSI colour on or off.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}
