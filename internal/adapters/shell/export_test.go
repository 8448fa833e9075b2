package shell

var (
	ResolveEnvironment = resolveEnvironment
	LookPath           = lookPath
	NewLogWriter       = newLogWriter
)

