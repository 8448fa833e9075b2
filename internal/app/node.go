package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/porcelain/internal/adapters/cas"                          //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/config"                       //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/discovery"                    //nolint:depguard // Wired in app layer
	fsadapter "go.trai.ch/porcelain/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/inference"                    //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/logger"                       //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/metadata"                     //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/metrics"                      //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/rustup"                       //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/sandbox"                      //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/shell"                        //nolint:depguard // Wired in app layer
	telemetry "go.trai.ch/porcelain/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/adapters/workspace"                    //nolint:depguard // Wired in app layer
	"go.trai.ch/porcelain/internal/core/domain"
	"go.trai.ch/porcelain/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			discovery.NodeID,
			fsadapter.ResolverNodeID,
			fsadapter.HasherNodeID,
			fsadapter.VerifierNodeID,
			cas.NodeID,
			metadata.NodeID,
			workspace.NodeID,
			inference.NodeID,
			shell.NodeID,
			metrics.NodeID,
			telemetry.NodeID,
			rustup.NodeID,
			sandbox.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

//nolint:cyclop,funlen // dependency plumbing
func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tailor, err := graft.Dep[*discovery.Tailor](ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := graft.Dep[ports.InputResolver](ctx)
	if err != nil {
		return nil, err
	}
	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}
	verifier, err := graft.Dep[*fsadapter.Verifier](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.MetadataStore](ctx)
	if err != nil {
		return nil, err
	}
	parser, err := graft.Dep[ports.MetadataParser](ctx)
	if err != nil {
		return nil, err
	}
	workspaces, err := graft.Dep[*workspace.Resolver](ctx)
	if err != nil {
		return nil, err
	}
	engine, err := graft.Dep[*inference.Engine](ctx)
	if err != nil {
		return nil, err
	}
	executor, err := graft.Dep[ports.HostExecutor](ctx)
	if err != nil {
		return nil, err
	}
	recorder, err := graft.Dep[*metrics.PrometheusRecorder](ctx)
	if err != nil {
		return nil, err
	}
	tel, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}
	downloader, err := graft.Dep[ports.Downloader](ctx)
	if err != nil {
		return nil, err
	}
	locator, err := graft.Dep[*sandbox.Locator](ctx)
	if err != nil {
		return nil, err
	}

	deps := Dependencies{
		ConfigLoader: loader,
		Logger:       log,
		Tailor:       tailor,
		Resolver:     resolver,
		Hasher:       hasher,
		Store:        store,
		Metadata:     parser,
		Workspaces:   workspaces,
		Inference:    engine,
		Executor:     executor,
		Metrics:      recorder,
		Telemetry:    tel,
	}

	factories := Factories{
		Installer: func(cfg *domain.Config, platform domain.Platform) ports.ToolchainInstaller {
			return rustup.NewInstaller(cfg, platform, downloader, executor, log, tel, recorder)
		},
		Builder: func(cfg *domain.Config) ports.ProcessBuilder {
			return sandbox.NewBuilder(cfg, locator)
		},
		Runner: func(cfg *domain.Config) ports.ProcessRunner {
			opts := shell.Options{Root: cfg.Root, CacheDir: cfg.CacheDir, Keep: cfg.Sandbox.Keep}
			return shell.NewRunner(opts, log, tel, recorder, verifier)
		},
	}

	return New(deps, factories), nil
}
