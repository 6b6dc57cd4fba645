package config

const (
	// MaxNodeNameLength is the maximum length for a single file or folder name.
	// Matches the common filesystem limit of 255 bytes per path component.
	MaxNodeNameLength = 255

	// MaxUploadPaths is the maximum number of paths accepted by one import.
	MaxUploadPaths = 10000

	// MaxUploadPathLength is the maximum length of a single uploaded path.
	// Linux PATH_MAX is 4096.
	MaxUploadPathLength = 4096

	// MaxLanguageLength is the maximum length of a language identifier.
	MaxLanguageLength = 64

	// MaxRequestBodyBytes limits JSON request bodies.
	MaxRequestBodyBytes = 10 << 20

	// MaxMultipartBytes limits multipart upload forms. Only file names are
	// read; contents are discarded.
	MaxMultipartBytes = 100 << 20
)
