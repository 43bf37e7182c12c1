package internal

import "io"

// Action names what Run does against the catalog.
type Action string

// Actions.
const (
	ActionIndex  Action = "index"
	ActionUpdate Action = "update"
	ActionQuery  Action = "query"
	ActionVacuum Action = "vacuum"
	ActionStats  Action = "stats"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config      *Config
	action      Action
	query       string
	directories []string
	json        bool
	stdout      io.Writer
	stderr      io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithAction selects what Run does.
func WithAction(action Action) Option {
	return func(a *application) {
		a.action = action
	}
}

// WithQuery sets the text searched for by ActionQuery.
func WithQuery(text string) Option {
	return func(a *application) {
		a.query = text
	}
}

// WithDirectories sets the roots walked by ActionIndex, replacing the
// configured ones.
func WithDirectories(dirs ...string) Option {
	return func(a *application) {
		a.directories = dirs
	}
}

// WithJSON prints results as JSON lines instead of text.
func WithJSON(enabled bool) Option {
	return func(a *application) {
		a.json = enabled
	}
}

// WithOutput sets where results are printed (stdout) and where logs are
// written (stderr).
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}
