package rustup

var (
	ExtractBinary = extractBinary
	AcquireLock   = acquireLock
)
