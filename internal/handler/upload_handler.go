package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"gradecalc/internal/service"
)

const maxUploadSize = 10 << 20 // 10MB

type UploadHandler struct {
	cookies *SessionMiddleware
	logger  kitlog.Logger
}

func NewUploadHandler(cookies *SessionMiddleware, logger kitlog.Logger) *UploadHandler {
	return &UploadHandler{cookies: cookies, logger: logger}
}

// FileImport is the outcome of one uploaded part.
type FileImport struct {
	File string `json:"file"`
	service.ImportResult
}

// ImportCSV appends the rows of every uploaded "files" part to the session,
// file by file in upload order. Results are listed in the same order.
func (h *UploadHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too large or bad request", http.StatusRequestEntityTooLarge)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	var results []FileImport
	sess, err := h.cookies.Do(w, r, func(sess *service.Session) error {
		results = make([]FileImport, 0, len(files))
		for _, fh := range files {
			res, err := h.importFile(sess, fh)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
		return nil
	})
	if err != nil {
		sessionError(w, h.logger, err)
		return
	}
	for _, res := range results {
		level.Info(h.logger).Log("msg", "csv imported", "session", sess.ID, "file", res.File, "added", res.Added, "skipped", res.Skipped, "errors", len(res.Errors))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Files processed",
		"files":   results,
	})
}

// importFile reports file problems in the result. The only error returned is
// service.ErrSessionEnded.
func (h *UploadHandler) importFile(sess *service.Session, fh *multipart.FileHeader) (FileImport, error) {
	res := FileImport{File: fh.Filename}
	file, err := fh.Open()
	if err != nil {
		level.Warn(h.logger).Log("msg", "error opening upload", "file", fh.Filename, "err", err)
		res.Errors = []string{"could not open file"}
		return res, nil
	}
	defer file.Close()

	res.ImportResult, err = service.ImportCSV(sess, file)
	if errors.Is(err, service.ErrSessionEnded) {
		return res, err
	}
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
	}
	return res, nil
}

// ExportCSV downloads the session's table.
func (h *UploadHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	sess, err := h.cookies.Do(w, r, func(sess *service.Session) error {
		buf.Reset()
		return service.ExportCSV(sess, &buf)
	})
	if errors.Is(err, errNoSession) || errors.Is(err, service.ErrSessionEnded) {
		sessionError(w, h.logger, err)
		return
	}
	if err != nil {
		level.Error(h.logger).Log("msg", "csv export failed", "session", sess.ID, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="students.csv"`)
	w.Write(buf.Bytes())
}
