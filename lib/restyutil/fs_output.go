package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates a fresh "casewatch-http-*" directory under
// `dir` and returns an Output writing one file per message into it. Nothing
// already in `dir` is touched.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	session, err := os.MkdirTemp(dir, "casewatch-http-*")
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: session}, nil
}

// Dir is the directory the messages are written to.
func (o FilesystemOutput) Dir() string {
	return o.directory
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id), []byte(contents), 0o600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}
