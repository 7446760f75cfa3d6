package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"docquery/internal/app"
	"docquery/internal/extract"
	"docquery/internal/transport/http/response"
)

const maxUploadSize = 20 << 20 // 20 MB

type DocumentHandler struct {
	ingest     *app.IngestService
	retrieval  *app.RetrievalService
	sourcesDir string
	allowed    map[string]bool
}

type QueryRequest struct {
	Question string `json:"question" binding:"required"`
	Limit    int    `json:"limit"`
}

// NewDocumentHandler builds the handler; allowedTypes comes from the
// extractor registry, so a newly registered format is accepted here without
// any handler change.
func NewDocumentHandler(ingest *app.IngestService, retrieval *app.RetrievalService, sourcesDir string, allowedTypes []string) *DocumentHandler {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &DocumentHandler{
		ingest:     ingest,
		retrieval:  retrieval,
		sourcesDir: sourcesDir,
		allowed:    allowed,
	}
}

// Upload accepts a multipart form with "file" and optional "name". The
// response is sent once the document and its extracted text are stored;
// chunking and embedding run in the background afterwards.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > maxUploadSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large (max 20MB)")
		return
	}

	typeID := extract.TypeID(file.Filename)
	if !h.allowed[typeID] {
		response.Error(c, http.StatusBadRequest, response.CodeTypeNotAllowed, "file type not allowed")
		return
	}

	if err := os.MkdirAll(h.sourcesDir, 0o755); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "prepare sources dir failed")
		return
	}
	dst := filepath.Join(h.sourcesDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, dst); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "save file failed")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}

	doc, err := h.ingest.CreateFromFile(c.Request.Context(), name, dst)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedType):
			response.Error(c, http.StatusBadRequest, response.CodeTypeNotAllowed, "file type not allowed")
		case errors.Is(err, extract.ErrFileNotFound):
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "uploaded file vanished")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "ingest failed")
		}
		return
	}

	response.OK(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.ingest.ListDocuments()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

// Get returns one document including its ingestion status, the channel
// through which callers learn whether a document is retrieval-ready.
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	doc, err := h.ingest.GetDocument(id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get document failed")
		return
	}
	if doc == nil {
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "document not found")
		return
	}
	response.OK(c, doc)
}

// ListChunks returns the document's chunks in position order, mainly for
// inspecting what a query will retrieve against.
func (h *DocumentHandler) ListChunks(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	chunks, err := h.ingest.DocumentChunks(id)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "document not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list chunks failed")
		}
		return
	}
	response.OK(c, chunks)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	if err := h.ingest.DeleteDocument(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, "document not found")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": id})
}

// Query returns the chunks of one document nearest to the question. An
// unknown document or one without chunks yields an empty list, not an error.
func (h *DocumentHandler) Query(c *gin.Context) {
	// Any parseable id is accepted here; an unknown document simply owns no
	// chunks and yields an empty result below.
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	results, err := h.retrieval.Retrieve(c.Request.Context(), id, req.Question, req.Limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput), errors.Is(err, app.ErrInvalidLimit):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "query failed")
		}
		return
	}

	response.OK(c, results)
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	s := c.Param(key)
	u, err := strconv.ParseUint(s, 10, 64)
	return uint(u), err
}
