package httpapi

import (
	"errors"
	"net/http"
	"os"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/dmitrijs2005/vidtube/internal/filex"
)

// maxUploadMemory is how much of a multipart body is kept in memory before
// parts spill to temporary files.
const maxUploadMemory = 32 << 20

// maxJSONBody caps request bodies on JSON routes.
const maxJSONBody = 16 << 10

// defaultMaxUploadBody caps multipart bodies when RouterConfig leaves it unset.
const defaultMaxUploadBody = 16 << 20

func parseMultipart(r *http.Request) error {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		if isTooLarge(err) {
			return common.ErrorTooLarge
		}
		return common.NewValidationError("", "invalid multipart body")
	}
	return nil
}

// staged tracks files copied into the upload directory during one request
// and removes whatever is left of them when the request ends.
type staged struct {
	dir   string
	paths []string
}

// file stages the multipart file named field. A missing part yields "".
func (s *staged) file(r *http.Request, field string) (string, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", common.NewValidationError(field, "invalid file")
	}
	defer f.Close()

	path, err := filex.Stage(s.dir, hdr.Filename, f)
	if err != nil {
		return "", err
	}
	s.paths = append(s.paths, path)
	return path, nil
}

// cleanup removes staged files. Files already consumed by the asset store
// are gone and are skipped.
func (s *staged) cleanup() {
	for _, p := range s.paths {
		_ = os.Remove(p)
	}
}
