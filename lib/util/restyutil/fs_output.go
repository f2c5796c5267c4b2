package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
)

// FilesystemOutput keeps response bodies as files in one directory.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Path(name string) string {
	return filepath.Join(o.directory, name)
}

func (o FilesystemOutput) Write(name string, contents []byte) error {
	return os.WriteFile(o.Path(name), contents, 0644)
}

// SaveResponses writes the body of every successful response to out under
// the name returned by name, an empty name skips the response. Write
// failures are logged and never fail the request.
func SaveResponses(client *resty.Client, out FilesystemOutput, name func(res *resty.Response) string) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		if !res.IsSuccess() {
			return nil
		}
		file := name(res)
		if file == "" {
			return nil
		}
		err := out.Write(file, res.Body())
		if err != nil {
			slog.Warn("failed to save response", "file", file, "err", err)
		}
		return nil
	})
}
