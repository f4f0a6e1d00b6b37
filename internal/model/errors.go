package model

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures by how the session loop recovers from them:
// input and filesystem errors re-prompt, download errors return control to
// the "continue?" question. Anything untagged is treated as fatal.
var (
	ErrTagInput      = goerr.NewTag("input")
	ErrTagFilesystem = goerr.NewTag("filesystem")
	ErrTagDownload   = goerr.NewTag("download")
)

// IsInputError reports whether err was caused by invalid user input
func IsInputError(err error) bool {
	return goerr.HasTag(err, ErrTagInput)
}

// IsFilesystemError reports whether err was caused by a destination problem
func IsFilesystemError(err error) bool {
	return goerr.HasTag(err, ErrTagFilesystem)
}

// IsDownloadError reports whether err was surfaced by the download library
func IsDownloadError(err error) bool {
	return goerr.HasTag(err, ErrTagDownload)
}
