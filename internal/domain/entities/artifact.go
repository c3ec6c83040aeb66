// Package entities defines core domain models and data structures.
package entities

// SigningMode selects which key signs a package
type SigningMode string

// Signing modes
const (
	SigningDebug   SigningMode = "debug"
	SigningRelease SigningMode = "release"
)

// Artifact represents a signed, aligned application package
type Artifact struct {
	Name        string
	PackageName string
	Path        string
	Mode        SigningMode
	SHA256Path  string
	SigPath     string
}

// BuildRequest describes one run of the package build pipeline
type BuildRequest struct {
	Tools       ToolPaths
	PackageName string
	// DevDir holds AndroidManifest.xml, res/, assets/ and output/
	DevDir string
	// LibDir holds android-platform.apk, apk-signer.jar and debug.keystore
	LibDir string
	// JavaBin is the JRE bin dir; empty means java is on PATH
	JavaBin    string
	Mode       SigningMode
	Signing    SigningProfile
	OutputPath string
}
