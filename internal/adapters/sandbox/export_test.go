package sandbox

import "os"

// NewLocatorWithStat creates a Locator with a custom stat function.
func NewLocatorWithStat(stat func(string) (os.FileInfo, error)) *Locator {
	return &Locator{stat: stat}
}

// NewBuilderForTest creates a Builder with deterministic ports and ids.
func NewBuilderForTest(b *Builder, intN func(int) int, id string) *Builder {
	b.intN = intN
	b.newID = func() string { return id }
	return b
}
