package discovery

import (
	"context"
	"runtime"
	"sync"

	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// metadataSalt versions the cache key of stored package metadata.
const metadataSalt = "cargo-metadata-v1"

// Options configures an Expander.
type Options struct {
	Root      string
	CacheDir  string
	SkipTests bool
}

// Expander turns putative entities into workspace and package entities.
// Packages are expanded by asking the compiler driver for their metadata.
type Expander struct {
	opts     Options
	resolver ports.InputResolver
	hasher   ports.Hasher
	store    ports.MetadataStore
	parser   ports.MetadataParser
	builder  ports.ProcessBuilder
	runner   ports.ProcessRunner
}

// NewExpander creates a new Expander.
func NewExpander(
	opts Options,
	resolver ports.InputResolver,
	hasher ports.Hasher,
	store ports.MetadataStore,
	parser ports.MetadataParser,
	builder ports.ProcessBuilder,
	runner ports.ProcessRunner,
) *Expander {
	return &Expander{
		opts:     opts,
		resolver: resolver,
		hasher:   hasher,
		store:    store,
		parser:   parser,
		builder:  builder,
		runner:   runner,
	}
}

// Workspace creates the workspace entity of a putative workspace.
func (e *Expander) Workspace(p domain.PutativeEntity) *domain.WorkspaceEntity {
	ws := &domain.WorkspaceEntity{
		Address:       domain.NewAddress(p.Dir, domain.WorkspaceEntityName),
		Dir:           domain.NormalizeDir(p.Dir),
		RootIsPackage: p.Manifest.HasPackage(),
	}
	if p.Manifest.Workspace != nil {
		ws.Members = p.Manifest.Workspace.Members
		ws.Exclude = p.Manifest.Workspace.Exclude
	}
	return ws
}

// Expand creates the package entity of a putative package with one child per artifact.
func (e *Expander) Expand(ctx context.Context, toolchain *domain.Toolchain, p domain.PutativeEntity) (*domain.PackageEntity, error) {
	dir := domain.NormalizeDir(p.Dir)
	sources, err := e.resolver.ResolveInputs(e.opts.Root, dir, domain.DefaultPackageSources)
	if err != nil {
		return nil, zerr.With(err, "package", dir)
	}

	md, err := e.metadata(ctx, toolchain, dir, sources)
	if err != nil {
		return nil, err
	}

	return NewPackageEntity(dir, md, sources, e.opts.SkipTests), nil
}

// metadata returns the package metadata from the store, running the compiler driver on a miss.
func (e *Expander) metadata(
	ctx context.Context,
	toolchain *domain.Toolchain,
	dir string,
	sources []string,
) (*domain.PackageMetadata, error) {
	key, err := e.hasher.ComputeInputHash(e.opts.Root, sources, metadataSalt, toolchain.String())
	if err != nil {
		return nil, zerr.With(err, "package", dir)
	}

	if md, err := e.store.Get(e.opts.CacheDir, key); err != nil {
		return nil, err
	} else if md != nil {
		return md, nil
	}

	manifestPath := domain.ManifestPathFor(dir)
	spec, err := e.builder.Build(toolchain, domain.ProcessRequest{
		Description: "Inspect " + manifestPath,
		Args: []string{
			"metadata",
			"--manifest-path=" + manifestPath,
			"--format-version=1",
			"--no-deps",
		},
		InputFiles: sources,
	})
	if err != nil {
		return nil, err
	}

	res, err := e.runner.Run(ctx, spec)
	if err != nil {
		return nil, zerr.With(err, "path", manifestPath)
	}
	if !res.Succeeded() {
		failure := zerr.With(domain.ErrProcessFailed, "path", manifestPath)
		failure = zerr.With(failure, "exit_code", res.ExitCode)
		return nil, zerr.With(failure, "stderr", string(res.Stderr))
	}

	md, err := e.parser.Parse(res.Stdout)
	if err != nil {
		return nil, zerr.With(err, "path", manifestPath)
	}

	if err := e.store.Put(e.opts.CacheDir, key, md); err != nil {
		return nil, err
	}
	return md, nil
}

// NewPackageEntity builds the entity tree of one package: sources, the package marker that
// depends on them, and one artifact per library, binary and test that depends on the marker.
func NewPackageEntity(dir string, md *domain.PackageMetadata, sources []string, skipTests bool) *domain.PackageEntity {
	pkg := &domain.PackageEntity{
		Address:            domain.NewAddress(dir, domain.PackageGeneratorName),
		Dir:                dir,
		Name:               md.Name,
		Sources:            sources,
		OutputPathTemplate: domain.DefaultOutputPathTemplate,
		SkipTests:          skipTests,
	}

	marker := pkg.MarkerAddress()
	add := func(kind domain.ArtifactKind, name string, deps ...domain.Address) {
		pkg.Artifacts = append(pkg.Artifacts, &domain.ArtifactEntity{
			Address:      domain.ArtifactAddress(dir, kind, name),
			Kind:         kind,
			Name:         name,
			Package:      pkg.Address,
			Dependencies: deps,
		})
	}

	add(domain.KindSources, md.Name)
	add(domain.KindPackage, md.Name, pkg.SourcesAddress())

	if libs := md.ArtifactsOf(domain.ArtifactLibrary); len(libs) > 0 {
		add(domain.KindLibrary, libs[0].Name, marker)
	}
	for _, bin := range md.ArtifactsOf(domain.ArtifactBinary) {
		add(domain.KindBinary, bin.Name, marker)
	}
	if !skipTests {
		for _, test := range md.ArtifactsOf(domain.ArtifactTest) {
			add(domain.KindTest, test.Name, marker)
		}
	}
	return pkg
}

// BuildUniverse expands every putative entity into a universe. Packages are expanded
// concurrently; a package that fails to expand is reported and left out.
func (e *Expander) BuildUniverse(
	ctx context.Context,
	toolchain *domain.Toolchain,
	putative []domain.PutativeEntity,
) (*domain.Universe, []error) {
	universe := domain.NewUniverse()

	var (
		mu       sync.Mutex
		failures []error
	)
	fail := func(err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	}

	var packages []domain.PutativeEntity
	for _, p := range putative {
		universe.AddManifest(p.Dir, p.Manifest)

		if p.Kind != domain.PutativeWorkspace {
			packages = append(packages, p)
			continue
		}
		if err := universe.AddWorkspace(e.Workspace(p)); err != nil {
			fail(err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, p := range packages {
		g.Go(func() error {
			pkg, err := e.Expand(gctx, toolchain, p)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				fail(err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if err := universe.AddPackage(pkg); err != nil {
				failures = append(failures, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		failures = append(failures, err)
	}
	return universe, failures
}
