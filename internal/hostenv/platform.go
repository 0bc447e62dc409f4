package hostenv

import "strings"

// OSKind classifies a host for the application.
type OSKind int

const (
	OSUnsupported OSKind = iota
	OSSupportedDesktop
	OSSupportedServer
)

func (k OSKind) String() string {
	switch k {
	case OSSupportedDesktop:
		return "supported-desktop"
	case OSSupportedServer:
		return "supported-server"
	default:
		return "unsupported"
	}
}

// PlatformVerdict is the policy decision for an (OS, architecture) pair.
type PlatformVerdict struct {
	Kind OSKind
	// Label names the supported platform, e.g. "Linux x86_64".
	Label string
	// Reason explains why the platform is unsupported.
	Reason string
	// Advice lists alternatives the user can fall back to.
	Advice []string
}

func (v PlatformVerdict) Supported() bool {
	return v.Kind != OSUnsupported
}

type platformRule struct {
	goos  string
	archs []string // nil matches any architecture
	build func(arch string) PlatformVerdict
}

var windowsAdvice = []string{
	"Docker: docker run -it -p 8000:8000 rhasspy/snowboy-seasalt",
	"WSL2: run inside Windows Subsystem for Linux",
}

// platformPolicy is evaluated top to bottom; the first matching rule wins.
var platformPolicy = []platformRule{
	{goos: "windows", build: func(string) PlatformVerdict {
		return PlatformVerdict{
			Kind:   OSUnsupported,
			Reason: "the native Snowboy library is not available on Windows",
			Advice: windowsAdvice,
		}
	}},
	{goos: "darwin", build: func(string) PlatformVerdict {
		return PlatformVerdict{Kind: OSSupportedDesktop, Label: "macOS"}
	}},
	{goos: "linux", archs: []string{"x86_64", "amd64"}, build: func(string) PlatformVerdict {
		return PlatformVerdict{Kind: OSSupportedServer, Label: "Linux x86_64"}
	}},
	{goos: "linux", build: func(arch string) PlatformVerdict {
		return PlatformVerdict{
			Kind:   OSUnsupported,
			Reason: "unsupported Linux architecture: " + arch,
			Advice: []string{"only x86_64/amd64 is supported"},
		}
	}},
}

// Classify applies the platform policy. goos accepts both GOOS values and
// uname-style names ("Linux", "Darwin", "Windows"); architecture matching
// is a substring test so "x86_64" and "amd64" variants both qualify.
func Classify(goos, arch string) PlatformVerdict {
	osName := strings.ToLower(strings.TrimSpace(goos))
	archName := strings.ToLower(strings.TrimSpace(arch))
	for _, rule := range platformPolicy {
		if rule.goos != osName {
			continue
		}
		if rule.archs != nil && !containsAny(archName, rule.archs) {
			continue
		}
		return rule.build(arch)
	}
	return PlatformVerdict{Kind: OSUnsupported, Reason: "unsupported operating system: " + DisplayOS(goos)}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DisplayOS maps a GOOS value to the name users expect to see.
func DisplayOS(goos string) string {
	switch strings.ToLower(goos) {
	case "darwin":
		return "Darwin"
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	default:
		return goos
	}
}
