package shell

// ResolveEnvironment exports resolveEnvironment for white-box testing.
var ResolveEnvironment = resolveEnvironment

// NewExecutorWithEnv creates an Executor reading the given system environment.
func NewExecutorWithEnv(e *Executor, env []string) *Executor {
	e.sysEnv = func() []string { return env }
	return e
}
