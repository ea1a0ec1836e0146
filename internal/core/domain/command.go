package domain

// Command is one shell command line executed by a stage.
type Command struct {
	// Line is passed verbatim to the shell.
	Line string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds KEY=VALUE pairs layered over the allow-listed system environment.
	// A PATH entry is prepended to the system PATH instead of replacing it.
	Env []string
}
