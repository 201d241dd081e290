package validators

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/selimbouaziz/ateliera-backend/pkg/errors"
)

// UploadedFile is one file pulled out of a multipart form.
type UploadedFile struct {
	Name        string
	ContentType string
	Body        multipart.File
}

// Close releases the underlying file handle.
func (f *UploadedFile) Close() {
	if f != nil && f.Body != nil {
		_ = f.Body.Close()
	}
}

// ParseMultipart parses the request as a multipart form capped at
// maxUploadMB per request.
func ParseMultipart(r *http.Request, maxUploadMB int) error {
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	if err := r.ParseMultipartForm(int64(maxUploadMB) << 20); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormFiles opens every file uploaded under the given field name.
// Callers own the returned handles.
func FormFiles(r *http.Request, field string) ([]*UploadedFile, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	files := make([]*UploadedFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload").WithDetails(map[string]any{"field": field})
		}
		files = append(files, &UploadedFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		})
	}
	return files, nil
}

// OptionalFormFile opens the single file uploaded under the field, or
// returns nil when the field is absent.
func OptionalFormFile(r *http.Request, field string) (*UploadedFile, error) {
	files, err := FormFiles(r, field)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	for _, extra := range files[1:] {
		extra.Close()
	}
	return files[0], nil
}

// FormValue returns the trimmed form field value.
func FormValue(r *http.Request, field string) string {
	return strings.TrimSpace(r.FormValue(field))
}

// FormFloat parses a numeric form field, treating absence as zero.
func FormFloat(r *http.Request, field string) (float64, error) {
	raw := FormValue(r, field)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "form field must be numeric").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

// DecodeFormJSON unmarshals a JSON-encoded form field into dest. An
// absent field leaves dest untouched.
func DecodeFormJSON(r *http.Request, field string, dest any) error {
	raw := FormValue(r, field)
	if raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid json form field").WithDetails(map[string]any{"field": field})
	}
	return nil
}
