package entities

// ArchiveFormat is the packaging of a downloadable SDK
type ArchiveFormat string

// Supported SDK archive formats
const (
	ArchiveZip   ArchiveFormat = "zip"
	ArchiveTarGz ArchiveFormat = "tgz"
)

// SDKArchive locates a downloadable SDK bundle
type SDKArchive struct {
	URL    string
	Format ArchiveFormat
	// SHA256 is optional; when set the download is verified before extraction
	SHA256 string
}

// HostCapability describes how to auto-install the SDK on one host OS
type HostCapability struct {
	Archive SDKArchive
	// ExtractTarget is the directory the archive is unpacked into
	ExtractTarget string
	// SDKRoot is the SDK directory that exists after extraction
	SDKRoot string
}
