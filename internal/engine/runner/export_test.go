package runner

// WithLookupEnv makes r read the system environment through lookup.
func WithLookupEnv(r *Runner, lookup func(string) (string, bool)) *Runner {
	r.lookupEnv = lookup
	return r
}
