package domain

import (
	"maps"
	"slices"
	"time"
)

// ProcessSpec is a hermetic execution request. It is built fresh for every invocation.
type ProcessSpec struct {
	ID          string
	Description string

	// Argv runs inside the sandbox directory.
	Argv []string

	// InputFiles are build-root relative files copied into the sandbox.
	InputFiles []string

	// GeneratedFiles are written into the sandbox before execution, keyed by relative path.
	GeneratedFiles map[string][]byte

	// Env is the complete process environment. ChrootPlaceholder is substituted at execution time.
	Env map[string]string

	// NamedCaches maps a cache name to the sandbox-relative path it is mounted at.
	NamedCaches map[string]string

	// ImmutableMounts maps a sandbox-relative path to a read-only host path.
	ImmutableMounts map[string]string

	// OutputFiles and OutputDirs are sandbox-relative paths captured after a successful run.
	OutputFiles []string
	OutputDirs  []string

	Timeout time.Duration
}

// EnvList renders the environment as sorted KEY=VALUE pairs.
func (p *ProcessSpec) EnvList() []string {
	keys := slices.Sorted(maps.Keys(p.Env))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+p.Env[k])
	}
	return out
}

// Outputs returns all declared outputs, files first.
func (p *ProcessSpec) Outputs() []string {
	return append(slices.Clone(p.OutputFiles), p.OutputDirs...)
}

// ProcessResult is the outcome of running a ProcessSpec.
type ProcessResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte

	// OutputDir holds the captured outputs, laid out by their declared relative paths.
	OutputDir string
	Outputs   []string

	Duration time.Duration
}

// Succeeded reports whether the process exited with code zero.
func (r *ProcessResult) Succeeded() bool {
	return r.ExitCode == 0
}

// Outcome classifies the result of a goal partition.
type Outcome string

const (
	// OutcomeSucceeded means the toolchain exited with code zero.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailed means the toolchain exited with a non-zero code.
	OutcomeFailed Outcome = "failed"
	// OutcomeNoWork means no applicable work was found. It is not an error.
	OutcomeNoWork Outcome = "no work found"
	// OutcomeSkipped means the goal was disabled by configuration.
	OutcomeSkipped Outcome = "skipped"
)

// GoalResult is the outcome of one partition of a goal.
type GoalResult struct {
	Goal    string
	Address Address
	Outcome Outcome

	ExitCode int
	Stdout   string
	Stderr   string

	// Outputs are the files the partition produced. Files written into the build root are root-relative.
	Outputs []string

	// OutputDir holds captured outputs handed to the caller instead of being written into the build root.
	// The caller removes it once done.
	OutputDir string
}

// Failed reports whether the partition failed.
func (r *GoalResult) Failed() bool {
	return r.Outcome == OutcomeFailed
}

// ProcessRequest asks for a toolchain invocation inside a sandbox.
type ProcessRequest struct {
	Description string

	// Args follow the compiler driver, e.g. {"build", "--manifest-path=a/Cargo.toml"}.
	Args []string

	InputFiles []string

	// OutputFiles and OutputDirs may contain CachePathPlaceholder.
	OutputFiles []string
	OutputDirs  []string

	// CacheNamespace remaps the compiler output directory into the shared target cache.
	CacheNamespace string

	ExtraEnv        map[string]string
	ImmutableMounts map[string]string

	// Sccache and Mtime are optional helper tools.
	Sccache *InstalledTool
	Mtime   *InstalledTool
}
