package domain

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// ToolchainRequest identifies a toolchain to install. Its identity is the full tuple.
type ToolchainRequest struct {
	Version    string
	Target     string
	Components []string
}

// NewToolchainRequest creates a request with sorted, deduplicated components.
func NewToolchainRequest(version, target string, components ...string) ToolchainRequest {
	comps := slices.Clone(components)
	slices.Sort(comps)
	return ToolchainRequest{
		Version:    version,
		Target:     target,
		Components: slices.Compact(comps),
	}
}

// Key returns a deterministic identifier for the request.
func (r ToolchainRequest) Key() string {
	comps := slices.Clone(r.Components)
	slices.Sort(comps)
	comps = slices.Compact(comps)
	return r.Version + "|" + r.Target + "|" + strings.Join(comps, ",")
}

// channelPattern matches release channels, optionally pinned to a date: stable, beta-2024-01-04, nightly.
var channelPattern = regexp.MustCompile(`^(stable|beta|nightly)(-\d{4}-\d{2}-\d{2})?$`)

// ValidateToolchainVersion accepts release channels and semantic versions such as 1.75 or 1.75.0.
func ValidateToolchainVersion(version string) error {
	if channelPattern.MatchString(version) {
		return nil
	}
	if _, err := semver.NewVersion(version); err != nil || strings.HasPrefix(version, "v") {
		return zerr.With(ErrInvalidToolchainVersion, "version", version)
	}
	return nil
}

// Toolchain is an installed toolchain living inside the shared toolchain-manager cache.
// Root is relative to a sandbox, where the cache is mounted at RustupCache.Path.
type Toolchain struct {
	Root    string
	Version string
	Target  string
	Ready   bool
}

// NewToolchain returns the toolchain for a version and target triple.
func NewToolchain(version, target string) *Toolchain {
	return &Toolchain{
		Root:    path.Join(RustupCache.Path, "toolchains", version+"-"+target),
		Version: version,
		Target:  target,
		Ready:   true,
	}
}

// Cargo returns the sandbox-relative path of the compiler driver.
func (t *Toolchain) Cargo() string {
	return path.Join(t.Root, "bin", "cargo")
}

// BinDir returns the sandbox-relative directory of the toolchain binaries.
func (t *Toolchain) BinDir() string {
	return path.Join(t.Root, "bin")
}

func (t *Toolchain) String() string {
	return fmt.Sprintf("rust-%s-%s", t.Version, t.Target)
}

// Platform is a host OS/CPU pair with a known toolchain download.
type Platform string

const (
	// PlatformLinuxX8664 is 64-bit x86 Linux.
	PlatformLinuxX8664 Platform = "linux_x86_64"
	// PlatformLinuxArm64 is 64-bit ARM Linux.
	PlatformLinuxArm64 Platform = "linux_arm64"
	// PlatformMacOSX8664 is 64-bit x86 macOS.
	PlatformMacOSX8664 Platform = "macos_x86_64"
	// PlatformMacOSArm64 is Apple silicon macOS.
	PlatformMacOSArm64 Platform = "macos_arm64"
)

var platformTriples = map[Platform]string{
	PlatformLinuxX8664: "x86_64-unknown-linux-gnu",
	PlatformLinuxArm64: "aarch64-unknown-linux-gnu",
	PlatformMacOSX8664: "x86_64-apple-darwin",
	PlatformMacOSArm64: "aarch64-apple-darwin",
}

// Triple returns the target triple for the platform.
func (p Platform) Triple() (string, error) {
	triple, ok := platformTriples[p]
	if !ok {
		return "", zerr.With(ErrUnsupportedPlatform, "platform", string(p))
	}
	return triple, nil
}

// IsMacOS reports whether the platform is a macOS variant.
func (p Platform) IsMacOS() bool {
	return strings.HasPrefix(string(p), "macos_")
}

// PlatformFor maps a GOOS/GOARCH pair onto a Platform.
func PlatformFor(goos, goarch string) (Platform, error) {
	var p Platform
	switch goos + "/" + goarch {
	case "linux/amd64":
		p = PlatformLinuxX8664
	case "linux/arm64":
		p = PlatformLinuxArm64
	case "darwin/amd64":
		p = PlatformMacOSX8664
	case "darwin/arm64":
		p = PlatformMacOSArm64
	default:
		err := zerr.With(ErrUnsupportedPlatform, "os", goos)
		return "", zerr.With(err, "arch", goarch)
	}
	return p, nil
}

// Digest is the expected sha256 and size of a downloadable file.
type Digest struct {
	SHA256 string
	Size   int64
}

// ToolSpec names a helper tool installed through the compiler driver.
type ToolSpec struct {
	Name    string
	Version string
}

// InstalledTool is a helper tool binary on the host.
type InstalledTool struct {
	Spec ToolSpec
	Path string
}
