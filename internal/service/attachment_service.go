package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/collabflow/collabflow-api/internal/dto"
	"github.com/collabflow/collabflow-api/internal/models"
	"github.com/collabflow/collabflow-api/internal/observability"
	"github.com/collabflow/collabflow-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrAttachmentParentRequired indicates the upload did not name exactly
	// one parent entity.
	ErrAttachmentParentRequired = errors.New("exactly one of document_id, issue_id or comment_id must be set")
	// ErrAttachmentNotFound covers a missing row and one uploaded by someone
	// else.
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// FileStorage abstracts the attachment object store.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// AttachmentParent names the entity a new attachment belongs to.
type AttachmentParent struct {
	DocumentID *string
	IssueID    *string
	CommentID  *string
}

// AttachmentService validates and stores file attachments.
type AttachmentService interface {
	Upload(ctx context.Context, file *multipart.FileHeader, uploadedBy string, parent AttachmentParent) (dto.AttachmentResponse, error)
	List(ctx context.Context, query dto.AttachmentListQuery) ([]dto.AttachmentResponse, error)
	Delete(ctx context.Context, id, uploadedBy string) error
}

type attachmentService struct {
	storage   FileStorage
	repo      repository.AttachmentRepository
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	maxSize   int64
}

// NewAttachmentService constructs an attachment service.
func NewAttachmentService(storage FileStorage, repo repository.AttachmentRepository, maxSizeMB int, validate *validator.Validate, logger zerolog.Logger) AttachmentService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &attachmentService{
		storage:   storage,
		repo:      repo,
		validator: validate,
		logger:    logger.With().Str("component", "attachment_service").Logger(),
		tracer:    otel.Tracer("github.com/collabflow/collabflow-api/internal/service/attachment"),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
	}
}

func (s *attachmentService) Upload(ctx context.Context, file *multipart.FileHeader, uploadedBy string, parent AttachmentParent) (dto.AttachmentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "attachments.store")
	defer span.End()

	if !exactlyOneOfThree(parent.DocumentID, parent.IssueID, parent.CommentID) {
		span.SetStatus(codes.Error, "parent validation failed")
		return dto.AttachmentResponse{}, ErrAttachmentParentRequired
	}
	if file == nil {
		err := errors.New("file is required")
		span.RecordError(err)
		return dto.AttachmentResponse{}, err
	}

	span.SetAttributes(
		attribute.String("attachment.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("attachment.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.AttachmentResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		return dto.AttachmentResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		return dto.AttachmentResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.SetStatus(codes.Error, "payload too large")
		return dto.AttachmentResponse{}, ErrUploadTooLarge
	}

	mime := mimetype.Detect(buf.Bytes())
	fileType := mime.String()
	span.SetAttributes(attribute.String("attachment.detected_mime", fileType))
	if !allowedAttachmentType(fileType) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		span.SetStatus(codes.Error, "type not allowed")
		return dto.AttachmentResponse{}, ErrUploadTypeNotAllowed
	}

	name := sanitizeFileName(file.Filename)
	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.AttachmentResponse{}, err
	}

	attachment := models.Attachment{
		Name:       name,
		URL:        url,
		Type:       fileType,
		Size:       int64(buf.Len()),
		UploadedBy: uploadedBy,
		DocumentID: parent.DocumentID,
		IssueID:    parent.IssueID,
		CommentID:  parent.CommentID,
	}

	if err := s.repo.Create(ctx, &attachment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.AttachmentResponse{}, err
	}

	observability.UploadsTotal().WithLabelValues(mimeFamily(fileType)).Inc()
	span.SetStatus(codes.Ok, "stored")

	s.logger.Info().
		Str("attachment_id", attachment.ID).
		Str("uploaded_by", uploadedBy).
		Int64("size_bytes", attachment.Size).
		Msg("attachment stored")

	return dto.NewAttachmentResponse(attachment), nil
}

func (s *attachmentService) List(ctx context.Context, query dto.AttachmentListQuery) ([]dto.AttachmentResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	if !exactlyOneOfThree(query.DocumentID, query.IssueID, query.CommentID) {
		return nil, ErrAttachmentParentRequired
	}

	var (
		column   string
		parentID string
	)
	switch {
	case query.DocumentID != nil && *query.DocumentID != "":
		column, parentID = "document_id", *query.DocumentID
	case query.IssueID != nil && *query.IssueID != "":
		column, parentID = "issue_id", *query.IssueID
	default:
		column, parentID = "comment_id", *query.CommentID
	}

	attachments, err := s.repo.ListByParent(ctx, column, parentID)
	if err != nil {
		return nil, err
	}
	return dto.NewAttachmentResponseSlice(attachments), nil
}

func (s *attachmentService) Delete(ctx context.Context, id, uploadedBy string) error {
	err := s.repo.Delete(ctx, id, uploadedBy)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAttachmentNotFound
	}
	return err
}

// allowedAttachmentType permits common document, image and archive types.
func allowedAttachmentType(mime string) bool {
	lower := strings.ToLower(strings.TrimSpace(mime))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	if strings.HasPrefix(lower, "image/") || strings.HasPrefix(lower, "text/") {
		return true
	}
	switch lower {
	case "application/pdf",
		"application/zip",
		"application/json",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return true
	}
	return false
}

func mimeFamily(mime string) string {
	if idx := strings.Index(mime, "/"); idx > 0 {
		return mime[:idx]
	}
	return "other"
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func exactlyOneOfThree(a, b, c *string) bool {
	set := 0
	for _, id := range []*string{a, b, c} {
		if id != nil && *id != "" {
			set++
		}
	}
	return set == 1
}
