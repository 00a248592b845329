package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/letterdesk/backend/internal/interfaces/http/dto"
	"github.com/letterdesk/backend/internal/interfaces/http/middleware"
)

// maxAttachmentSize limits a single uploaded attachment.
const maxAttachmentSize = 25 << 20 // 25MB

// LetterHandler handles letter API endpoints
type LetterHandler struct {
	BaseHandler
	service *app.LetterService
}

// NewLetterHandler creates a new LetterHandler
func NewLetterHandler(service *app.LetterService) *LetterHandler {
	return &LetterHandler{service: service}
}

// CreateLetterRequest is the JSON payload for creating a letter.
// Attachments ride along as multipart files under the "attachments"
// field when the request is multipart. An explicit year numbers the
// letter into that year's series; otherwise the year comes from the
// letter date.
type CreateLetterRequest struct {
	CompanyID        string `json:"company_id" form:"company_id" binding:"required"`
	LetterDate       string `json:"letter_date" form:"letter_date" binding:"omitempty"`
	Year             int    `json:"year" form:"year" binding:"omitempty,gte=0"`
	RecipientCompany string `json:"recipient_company" form:"recipient_company" binding:"omitempty,max=300"`
	Subject          string `json:"subject" form:"subject" binding:"omitempty,max=500"`
	PreparedBy       string `json:"prepared_by" form:"prepared_by" binding:"omitempty,max=200"`
	Notes            string `json:"notes" form:"notes" binding:"omitempty,max=4000"`
}

// UpdateLetterRequest is a partial letter update; absent fields stay
// untouched. The reference number, sequence, year and company binding
// cannot be changed.
type UpdateLetterRequest struct {
	LetterDate        *string  `json:"letter_date" binding:"omitempty"`
	RecipientCompany  *string  `json:"recipient_company" binding:"omitempty,max=300"`
	Subject           *string  `json:"subject" binding:"omitempty,max=500"`
	PreparedBy        *string  `json:"prepared_by" binding:"omitempty,max=200"`
	Notes             *string  `json:"notes" binding:"omitempty,max=4000"`
	RemoveAttachments []string `json:"remove_attachments" binding:"omitempty"`
}

// NextSequenceResponse reports the advisory next sequence for a company
// and year.
type NextSequenceResponse struct {
	CompanyID string `json:"company_id"`
	Year      int    `json:"year"`
	Sequence  int    `json:"sequence"`
}

// PreviewReferenceResponse reports the reference the next letter would
// get. Nothing is reserved.
type PreviewReferenceResponse struct {
	CompanyID string `json:"company_id"`
	Year      int    `json:"year"`
	Reference string `json:"reference"`
}

// AttachmentURLResponse carries a resolved attachment view URL.
type AttachmentURLResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// List returns the letters visible to the caller, newest first
func (h *LetterHandler) List(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	list, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}

// Get returns a single letter
func (h *LetterHandler) Get(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	letter, err := h.service.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, letter)
}

// Create registers a letter and allocates its reference number.
// Accepts JSON, or multipart/form-data with files under "attachments".
// Attachment upload failures do not fail the call; they are reported in
// the response meta.
func (h *LetterHandler) Create(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateLetterRequest
	var uploads []app.AttachmentUpload

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
		uploads, err = h.readUploads(c, "attachments")
		if err != nil {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, err.Error())
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.HandleValidationError(c, err)
			return
		}
	}

	letterDate, ok := parseLetterDate(req.LetterDate)
	if !ok {
		h.BadRequest(c, "letter_date must be an RFC3339 timestamp or YYYY-MM-DD date")
		return
	}

	letter, failures, err := h.service.Create(c.Request.Context(), principal, app.CreateLetterInput{
		CompanyID:        req.CompanyID,
		LetterDate:       letterDate,
		Year:             req.Year,
		RecipientCompany: req.RecipientCompany,
		Subject:          req.Subject,
		PreparedBy:       req.PreparedBy,
		Notes:            req.Notes,
		Attachments:      uploads,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if len(failures) > 0 {
		h.CreatedWithMeta(c, letter, &dto.Meta{AttachmentFailures: failures})
		return
	}
	h.Created(c, letter)
}

// Update applies a partial update to a letter. Attachment removals are
// best-effort; failures are reported in the response meta.
func (h *LetterHandler) Update(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	input := app.UpdateLetterInput{
		RecipientCompany:  req.RecipientCompany,
		Subject:           req.Subject,
		PreparedBy:        req.PreparedBy,
		Notes:             req.Notes,
		RemoveAttachments: req.RemoveAttachments,
	}
	if req.LetterDate != nil {
		parsed, ok := parseLetterDate(*req.LetterDate)
		if !ok || parsed.IsZero() {
			h.BadRequest(c, "letter_date must be an RFC3339 timestamp or YYYY-MM-DD date")
			return
		}
		input.LetterDate = &parsed
	}

	letter, failures, err := h.service.Update(c.Request.Context(), principal, c.Param("id"), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if len(failures) > 0 {
		h.SuccessWithMeta(c, letter, &dto.Meta{AttachmentFailures: failures})
		return
	}
	h.Success(c, letter)
}

// AddAttachments uploads files to an existing letter. Multipart only,
// files under "attachments". Failures are reported per file.
func (h *LetterHandler) AddAttachments(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	uploads, err := h.readUploads(c, "attachments")
	if err != nil {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, err.Error())
		return
	}
	if len(uploads) == 0 {
		h.BadRequest(c, "at least one file is required under the attachments field")
		return
	}

	letter, failures, err := h.service.Update(c.Request.Context(), principal, c.Param("id"), app.UpdateLetterInput{
		AddAttachments: uploads,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if len(failures) > 0 {
		h.SuccessWithMeta(c, letter, &dto.Meta{AttachmentFailures: failures})
		return
	}
	h.Success(c, letter)
}

// ListAttachments returns the attachments of a letter, loading them
// lazily from the blob store on first access
func (h *LetterHandler) ListAttachments(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	attachments, err := h.service.ListAttachments(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, attachments)
}

// AttachmentURL resolves a view URL for one attachment identified by its
// storage path
func (h *LetterHandler) AttachmentURL(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	path := c.Query("path")
	if path == "" {
		h.BadRequest(c, "path query parameter is required")
		return
	}

	url, err := h.service.AttachmentURL(c.Request.Context(), principal, c.Param("id"), path)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, AttachmentURLResponse{Path: path, URL: url})
}

// NextSequence reports the sequence the next letter for the company and
// year would get. Advisory only
func (h *LetterHandler) NextSequence(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	companyID, year, ok := h.sequenceQuery(c)
	if !ok {
		return
	}

	seq, err := h.service.NextSequence(c.Request.Context(), principal, companyID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, NextSequenceResponse{CompanyID: companyID, Year: year, Sequence: seq})
}

// PreviewReference renders the reference the next letter would get.
// Nothing is reserved; two callers can see the same preview
func (h *LetterHandler) PreviewReference(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	companyID, year, ok := h.sequenceQuery(c)
	if !ok {
		return
	}

	ref, err := h.service.PreviewReference(c.Request.Context(), principal, companyID, year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PreviewReferenceResponse{CompanyID: companyID, Year: year, Reference: ref})
}

// sequenceQuery parses the company_id and year query parameters shared
// by NextSequence and PreviewReference. Year defaults to the current
// year.
func (h *LetterHandler) sequenceQuery(c *gin.Context) (string, int, bool) {
	companyID := c.Query("company_id")
	if companyID == "" {
		h.BadRequest(c, "company_id query parameter is required")
		return "", 0, false
	}

	year := time.Now().Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "year must be a positive integer")
			return "", 0, false
		}
		year = parsed
	}
	return companyID, year, true
}

// readUploads reads multipart files from the named form field into
// memory, enforcing the per-file size limit.
func (h *LetterHandler) readUploads(c *gin.Context, field string) ([]app.AttachmentUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	files := form.File[field]
	uploads := make([]app.AttachmentUpload, 0, len(files))
	for _, header := range files {
		upload, err := readUpload(header)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

func readUpload(header *multipart.FileHeader) (app.AttachmentUpload, error) {
	if header.Size > maxAttachmentSize {
		return app.AttachmentUpload{}, &attachmentTooLargeError{name: header.Filename}
	}

	file, err := header.Open()
	if err != nil {
		return app.AttachmentUpload{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAttachmentSize+1))
	if err != nil {
		return app.AttachmentUpload{}, err
	}
	if len(data) > maxAttachmentSize {
		return app.AttachmentUpload{}, &attachmentTooLargeError{name: header.Filename}
	}

	return app.AttachmentUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

type attachmentTooLargeError struct {
	name string
}

func (e *attachmentTooLargeError) Error() string {
	return "attachment " + e.name + " exceeds the maximum size of 25MB"
}

// parseLetterDate accepts an RFC3339 timestamp or a plain date. An empty
// string yields a zero time, which means today.
func parseLetterDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
