// Package server exposes the processing service over HTTP: PDF upload,
// a synthesis text check, and a health probe.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/voxreader/vox/internal/process"
)

// maxUploadBytes caps a single PDF upload at 50MB.
const maxUploadBytes = 50 << 20

// PDFProcessor turns a PDF file into a processing result.
type PDFProcessor interface {
	ProcessPDF(path string) (*process.Result, error)
}

// Handler serves the upload and synthesis endpoints.
type Handler struct {
	logger    *slog.Logger
	processor PDFProcessor
	uploadDir string
}

// New creates a handler that stages uploads under uploadDir. An empty
// uploadDir falls back to the system temp directory.
func New(logger *slog.Logger, processor PDFProcessor, uploadDir string) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &Handler{logger: logger, processor: processor, uploadDir: uploadDir}
}

// Routes builds the service mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/upload-pdf/", h.HandleUpload)
	mux.HandleFunc("/synthesize-speech/", h.HandleSynthesize)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// HandleUpload accepts a multipart PDF, processes it, and returns the
// document model. The staged file is removed once processing finishes.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		h.writeError(w, "File must be a PDF", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.writeError(w, "Failed to create uploads directory: "+err.Error(), http.StatusInternalServerError)
		return
	}
	staged := filepath.Join(h.uploadDir, uuid.NewString()+".pdf")
	if err := writeUpload(staged, file); err != nil {
		h.writeError(w, "Failed to save file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.Remove(staged)

	h.logger.Info("processing upload", "filename", header.Filename, "size", header.Size)

	result, err := h.processor.ProcessPDF(staged)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !result.Success {
		h.writeError(w, result.Error, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]any{
		"message": "PDF uploaded and processed successfully",
		"data":    result,
	})
}

// HandleSynthesize echoes the requested text back for client-side speech
// synthesis.
func (h *Handler) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	text := r.URL.Query().Get("text")
	if text == "" {
		h.writeError(w, "Text is required", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, map[string]any{
		"text":    text,
		"message": "Text ready for synthesis",
	})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "healthy"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("encoding response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.logger.Error(message, "status", code)
	http.Error(w, message, code)
}

func writeUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
