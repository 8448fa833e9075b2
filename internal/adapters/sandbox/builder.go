package sandbox

import (
	"math/rand/v2"
	"maps"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
)

var _ ports.ProcessBuilder = (*Builder)(nil)

const (
	shimsPath      = domain.ShimsDirName
	sccacheBinPath = ".sccache-bin"
	mtimeBinPath   = ".mtime-bin"

	// Concurrent sandboxes each get their own compiler cache server.
	sccachePortMin = 20000
	sccachePortMax = 60000
)

// Builder implements ports.ProcessBuilder.
type Builder struct {
	cfg     *domain.Config
	locator *Locator
	intN    func(n int) int
	newID   func() string
}

// NewBuilder creates a Builder for the resolved configuration.
func NewBuilder(cfg *domain.Config, locator *Locator) *Builder {
	return &Builder{
		cfg:     cfg,
		locator: locator,
		intN:    rand.IntN,
		newID:   uuid.NewString,
	}
}

// Build wraps a compiler-driver invocation into a sandboxed bash script.
func (b *Builder) Build(toolchain *domain.Toolchain, req domain.ProcessRequest) (*domain.ProcessSpec, error) {
	binaries, err := b.locator.FindAll(SystemBinaries, b.cfg.Sandbox.SearchPaths)
	if err != nil {
		return nil, err
	}

	mounts := make(map[string]string, len(binaries)+len(req.ImmutableMounts)+2)
	for name, p := range binaries {
		mounts[path.Join(shimsPath, name)] = p
	}
	maps.Copy(mounts, req.ImmutableMounts)

	caches := map[string]string{
		domain.RustupCache.Name: domain.RustupCache.Path,
		domain.CargoCache.Name:  domain.CargoCache.Path,
	}

	env := map[string]string{
		"PATH": domain.ChrootPlaceholder + "/" + toolchain.BinDir() + ":" +
			domain.ChrootPlaceholder + "/" + shimsPath,
		"RUSTUP_HOME": domain.RustupCache.Path,
		"CARGO_HOME":  domain.CargoCache.Path,
		"RUSTFLAGS":   "-C linker=" + binaries["cc"],
	}

	script := newScriptWriter()
	script.exportRealpath("RUSTUP_HOME", domain.RustupCache.Path)
	script.exportRealpath("CARGO_HOME", domain.CargoCache.Path)

	cachePath := domain.DefaultTargetDir
	if req.CacheNamespace != "" {
		cachePath = path.Join(domain.TargetCache.Path, req.CacheNamespace)
		caches[domain.TargetCache.Name] = domain.TargetCache.Path
		env["CARGO_TARGET_DIR"] = cachePath
	}

	if req.Sccache != nil {
		mounts[sccacheBinPath] = filepath.Dir(req.Sccache.Path)
		caches[domain.SccacheCache.Name] = domain.SccacheCache.Path
		env["RUSTC_WRAPPER"] = domain.ChrootPlaceholder + "/" + path.Join(sccacheBinPath, filepath.Base(req.Sccache.Path))
		env["SCCACHE_DIR"] = domain.SccacheCache.Path
		env["SCCACHE_SERVER_PORT"] = strconv.Itoa(sccachePortMin + b.intN(sccachePortMax-sccachePortMin))
		script.exportRealpath("SCCACHE_DIR", domain.SccacheCache.Path)
	}

	if req.Mtime != nil && req.CacheNamespace != "" {
		mounts[mtimeBinPath] = filepath.Dir(req.Mtime.Path)
		env["CARGO_MTIME_DB"] = path.Join(cachePath, ".mtime.db")
		script.command(path.Join(".", mtimeBinPath, filepath.Base(req.Mtime.Path)), "mtime", ".", env["CARGO_MTIME_DB"])
	}

	// Caller environment wins over computed values.
	maps.Copy(env, b.cfg.ExtraEnv)
	maps.Copy(env, req.ExtraEnv)

	script.command(append([]string{toolchain.Cargo()}, req.Args...)...)

	outputFiles, copies := remapOutputs(req.OutputFiles, cachePath, req.CacheNamespace)
	outputDirs, dirCopies := remapOutputs(req.OutputDirs, cachePath, req.CacheNamespace)
	for _, c := range append(copies, dirCopies...) {
		script.command("mkdir", "-p", path.Dir(c.to))
		script.command("cp", "-R", c.from, c.to)
	}

	content, err := script.Bytes()
	if err != nil {
		return nil, err
	}

	return &domain.ProcessSpec{
		ID:              b.newID(),
		Description:     describe(req, toolchain),
		Argv:            []string{binaries["bash"], domain.WrapperScriptName},
		InputFiles:      req.InputFiles,
		GeneratedFiles:  map[string][]byte{domain.WrapperScriptName: content},
		Env:             env,
		NamedCaches:     caches,
		ImmutableMounts: mounts,
		OutputFiles:     outputFiles,
		OutputDirs:      outputDirs,
	}, nil
}

type outputCopy struct {
	from, to string
}

// remapOutputs resolves the cache path placeholder. Outputs inside the shared target cache
// are declared under the namespace and copied out after the toolchain call.
func remapOutputs(templates []string, cachePath, namespace string) ([]string, []outputCopy) {
	var (
		declared []string
		copies   []outputCopy
	)
	for _, tmpl := range templates {
		if !strings.Contains(tmpl, domain.CachePathPlaceholder) || namespace == "" {
			declared = append(declared, strings.ReplaceAll(tmpl, domain.CachePathPlaceholder, cachePath))
			continue
		}
		from := strings.ReplaceAll(tmpl, domain.CachePathPlaceholder, cachePath)
		to := strings.ReplaceAll(tmpl, domain.CachePathPlaceholder, namespace)
		declared = append(declared, to)
		copies = append(copies, outputCopy{from: from, to: to})
	}
	return declared, copies
}

func describe(req domain.ProcessRequest, toolchain *domain.Toolchain) string {
	if req.Description != "" {
		return req.Description
	}
	return "Run cargo " + strings.Join(req.Args, " ") + " with " + toolchain.String()
}
