package v1

// Option -.
type Option func(*signalingRoutes)

// SendBuffer sets the per-connection outbound envelope queue size.
func SendBuffer(size int) Option {
	return func(r *signalingRoutes) {
		if size > 0 {
			r.sendBuffer = size
		}
	}
}
