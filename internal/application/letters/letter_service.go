package letters

import (
	"context"
	"strings"
	"time"

	"github.com/letterdesk/backend/internal/domain/letters"
	"github.com/letterdesk/backend/internal/domain/shared"
	"github.com/letterdesk/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// maxAllocationAttempts bounds the recompute-and-retry loop when the
// sequence guard reports a reservation conflict.
const maxAllocationAttempts = 3

// LetterService registers letters, allocates their reference numbers
// and manages their attachments. Attachment failures never roll back
// the letter record; they are reported alongside the result.
type LetterService struct {
	records     letters.RecordStore
	blobs       letters.BlobStore
	guard       SequenceGuard
	state       *StateStore
	loader      *Loader
	collections Collections
	libraryRoot string
	logger      *zap.Logger
	now         func() time.Time
}

// NewLetterService creates a letter service. guard may be nil, in which
// case allocation stays best-effort within a single process.
func NewLetterService(
	records letters.RecordStore,
	blobs letters.BlobStore,
	guard SequenceGuard,
	state *StateStore,
	loader *Loader,
	collections Collections,
	libraryRoot string,
	logger *zap.Logger,
) *LetterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LetterService{
		records:     records,
		blobs:       blobs,
		guard:       guard,
		state:       state,
		loader:      loader,
		collections: collections,
		libraryRoot: libraryRoot,
		logger:      logger,
		now:         time.Now,
	}
}

// List returns the letters visible to the principal, newest letter date
// first. An unready scope sees nothing.
func (s *LetterService) List(ctx context.Context, principal string) ([]letters.Letter, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	return scope.FilterLetters(snap.Letters), nil
}

// Get returns one letter if the principal's scope covers its company.
func (s *LetterService) Get(ctx context.Context, principal, id string) (letters.Letter, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)

	letter, ok := snap.LetterByID(id)
	if !ok {
		return letters.Letter{}, shared.NewNotFoundError("letter not found")
	}
	if !scope.CanReadCompany(letter.CompanyID) {
		return letters.Letter{}, shared.NewPermissionError("letter is outside your company scope")
	}
	return letter, nil
}

// NextSequence computes the sequence the next letter for the company
// and year would get. Advisory only.
func (s *LetterService) NextSequence(ctx context.Context, principal, companyID string, year int) (int, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return 0, shared.ErrNotReady
	}
	company, ok := snap.CompanyByID(companyID)
	if !ok {
		return 0, shared.NewNotFoundError("company not found")
	}
	if !scope.CanReadCompany(companyID) {
		return 0, shared.NewPermissionError("company is outside your scope")
	}
	if year <= 0 {
		return 0, shared.NewValidationError("year is required")
	}
	return letters.NextSequence(snap.Letters, company, year), nil
}

// PreviewReference renders the reference the next letter would get.
// Nothing is reserved; two callers can see the same preview.
func (s *LetterService) PreviewReference(ctx context.Context, principal, companyID string, year int) (string, error) {
	seq, err := s.NextSequence(ctx, principal, companyID, year)
	if err != nil {
		return "", err
	}
	snap := s.state.Snapshot()
	company, ok := snap.CompanyByID(companyID)
	if !ok {
		return "", shared.NewNotFoundError("company not found")
	}
	return letters.FormatReference(company.Abbreviation, seq, year), nil
}

// Create allocates a reference number and registers the letter, then
// uploads attachments one by one. Upload failures are collected and
// returned with the created letter instead of failing the whole call.
func (s *LetterService) Create(ctx context.Context, principal string, input CreateLetterInput) (letters.Letter, []AttachmentFailure, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "letter", "create")
	defer span.End()

	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return letters.Letter{}, nil, shared.ErrNotReady
	}

	company, ok := snap.CompanyByID(input.CompanyID)
	if !ok {
		return letters.Letter{}, nil, shared.NewNotFoundError("company not found")
	}
	if !scope.CanEditLettersFor(company.ID) {
		return letters.Letter{}, nil, shared.NewPermissionError("you cannot create letters for this company")
	}

	letterDate := input.LetterDate
	if letterDate.IsZero() {
		letterDate = s.now()
	}
	year := input.Year
	if year == 0 {
		year = letterDate.Year()
	}

	sequence, err := s.allocateSequence(ctx, snap, company, year)
	if err != nil {
		telemetry.RecordError(span, err)
		return letters.Letter{}, nil, err
	}

	reference := letters.FormatReference(company.Abbreviation, sequence, year)
	if reference == "" {
		return letters.Letter{}, nil, shared.NewAllocationError("could not determine a reference number")
	}

	letter := letters.Letter{
		ReferenceNumber:     reference,
		CompanyID:           company.ID,
		CompanyName:         company.Name,
		CompanyAbbreviation: company.Abbreviation,
		SequenceNumber:      sequence,
		Year:                year,
		LetterDate:          letterDate,
		RecipientCompany:    strings.TrimSpace(input.RecipientCompany),
		Subject:             strings.TrimSpace(input.Subject),
		PreparedBy:          input.PreparedBy,
		Notes:               input.Notes,
	}

	rec, err := s.records.Create(ctx, s.collections.Letters, letter.Fields())
	if err != nil {
		s.releaseReservation(ctx, company.ID, year, sequence)
		s.logger.Error("Failed to create letter record",
			zap.String("reference", reference), zap.Error(err))
		telemetry.RecordError(span, err)
		return letters.Letter{}, nil, shared.NewStoreError("failed to create letter")
	}

	created := letters.LetterFromRecord(rec, s.now())
	s.state.UpsertLetter(created)
	telemetry.SetAttributes(span,
		"letter_id", created.ID,
		"reference", created.ReferenceNumber,
		"company_id", created.CompanyID,
	)
	s.logger.Info("Letter created",
		zap.String("letter_id", created.ID),
		zap.String("reference", created.ReferenceNumber),
		zap.String("company_id", created.CompanyID))

	var failures []AttachmentFailure
	if len(input.Attachments) > 0 {
		folder := letters.LetterFolder(s.libraryRoot, company)
		failures = s.uploadAttachments(ctx, folder, created.ReferenceNumber, input.Attachments)
		s.refreshAttachments(ctx, &created)
	}

	return created, failures, nil
}

// Update applies a partial update to a letter. Permission is checked
// against the stored record's company, not the caller's payload, and
// attachment removals run before additions. The reference number,
// sequence, year and company binding never change.
func (s *LetterService) Update(ctx context.Context, principal, id string, input UpdateLetterInput) (letters.Letter, []AttachmentFailure, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)
	if !scope.Ready {
		return letters.Letter{}, nil, shared.ErrNotReady
	}

	letter, ok := snap.LetterByID(id)
	if !ok {
		return letters.Letter{}, nil, shared.NewNotFoundError("letter not found")
	}
	if !scope.CanEditLettersFor(letter.CompanyID) {
		return letters.Letter{}, nil, shared.NewPermissionError("you cannot edit letters for this company")
	}

	var failures []AttachmentFailure
	folder := letters.LetterFolder(s.libraryRoot, letters.Company{
		Name:         letter.CompanyName,
		Abbreviation: letter.CompanyAbbreviation,
	})

	for _, path := range input.RemoveAttachments {
		if err := s.blobs.Delete(ctx, path); err != nil {
			s.logger.Warn("Failed to remove attachment",
				zap.String("letter_id", id),
				zap.String("path", path),
				zap.Error(err))
			failures = append(failures, AttachmentFailure{Name: path, Reason: err.Error()})
		}
	}

	if len(input.AddAttachments) > 0 {
		failures = append(failures, s.uploadAttachments(ctx, folder, letter.ReferenceNumber, input.AddAttachments)...)
	}

	fields := make(map[string]any)
	if input.LetterDate != nil {
		letter.LetterDate = *input.LetterDate
		fields[letters.FieldLetterDate] = letter.LetterDate.Format(time.RFC3339)
	}
	if input.RecipientCompany != nil {
		letter.RecipientCompany = strings.TrimSpace(*input.RecipientCompany)
		fields[letters.FieldLetterRecipientCompany] = letter.RecipientCompany
	}
	if input.Subject != nil {
		letter.Subject = strings.TrimSpace(*input.Subject)
		fields[letters.FieldLetterSubject] = letter.Subject
		title := letter.Subject
		if title == "" {
			title = letter.ReferenceNumber
		}
		fields[letters.FieldLetterTitle] = title
	}
	if input.PreparedBy != nil {
		letter.PreparedBy = *input.PreparedBy
		fields[letters.FieldLetterPreparedBy] = letter.PreparedBy
	}
	if input.Notes != nil {
		letter.Notes = *input.Notes
		fields[letters.FieldLetterNotes] = letter.Notes
	}

	if len(fields) > 0 {
		rec, err := s.records.Update(ctx, s.collections.Letters, id, fields)
		if err != nil {
			s.logger.Error("Failed to update letter record",
				zap.String("letter_id", id), zap.Error(err))
			return letters.Letter{}, failures, shared.NewStoreError("failed to update letter")
		}
		letter = letters.LetterFromRecord(rec, s.now())
	}

	s.state.UpsertLetter(letter)
	if len(input.RemoveAttachments) > 0 || len(input.AddAttachments) > 0 {
		s.refreshAttachments(ctx, &letter)
	}
	s.logger.Info("Letter updated", zap.String("letter_id", id))
	return letter, failures, nil
}

// ListAttachments lazily loads the attachments of a letter: blobs in
// the company folder whose stored name starts with the letter's
// reference prefix. Results are cached on the snapshot.
func (s *LetterService) ListAttachments(ctx context.Context, principal, id string) ([]letters.Attachment, error) {
	snap := s.state.Snapshot()
	scope := snap.ScopeFor(principal)

	letter, ok := snap.LetterByID(id)
	if !ok {
		return nil, shared.NewNotFoundError("letter not found")
	}
	if !scope.CanReadCompany(letter.CompanyID) {
		return nil, shared.NewPermissionError("letter is outside your company scope")
	}
	if letter.AttachmentsLoaded {
		return letter.Attachments, nil
	}

	attachments, err := s.fetchAttachments(ctx, letter)
	if err != nil {
		return nil, err
	}
	s.state.SetLetterAttachments(letter.ID, attachments)
	return attachments, nil
}

// AttachmentURL resolves a view URL for one attachment, issuing a fresh
// one when the stored listing has none.
func (s *LetterService) AttachmentURL(ctx context.Context, principal, id, path string) (string, error) {
	attachments, err := s.ListAttachments(ctx, principal, id)
	if err != nil {
		return "", err
	}
	for _, a := range attachments {
		if a.Path != path {
			continue
		}
		if a.ViewURL != "" {
			return a.ViewURL, nil
		}
		url, err := s.blobs.ViewURL(ctx, path)
		if err != nil {
			return "", shared.NewStoreError("failed to resolve attachment URL")
		}
		return url, nil
	}
	return "", shared.NewNotFoundError("attachment not found")
}

// allocateSequence picks the next sequence, reserving it through the
// guard when one is configured. On a reservation conflict the letter
// snapshot is refreshed from the store and the sequence recomputed, up
// to maxAllocationAttempts times.
func (s *LetterService) allocateSequence(ctx context.Context, snap Snapshot, company letters.Company, year int) (int, error) {
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		sequence := letters.NextSequence(snap.Letters, company, year)
		if sequence == 0 {
			return 0, shared.NewAllocationError("could not determine the next sequence number")
		}
		if s.guard == nil {
			return sequence, nil
		}

		reserved, err := s.guard.Reserve(ctx, company.ID, year, sequence)
		if err != nil {
			return 0, shared.NewStoreError("sequence reservation failed")
		}
		if reserved {
			return sequence, nil
		}

		s.logger.Warn("Sequence reservation conflict, recomputing",
			zap.String("company_id", company.ID),
			zap.Int("year", year),
			zap.Int("sequence", sequence),
			zap.Int("attempt", attempt+1))
		if err := s.loader.LoadLetters(ctx); err != nil {
			return 0, shared.NewStoreError("failed to refresh letters after reservation conflict")
		}
		snap = s.state.Snapshot()
	}
	return 0, shared.NewAllocationError("could not reserve a sequence number")
}

func (s *LetterService) releaseReservation(ctx context.Context, companyID string, year, sequence int) {
	if s.guard == nil {
		return
	}
	if err := s.guard.Release(ctx, companyID, year, sequence); err != nil {
		s.logger.Warn("Failed to release sequence reservation",
			zap.String("company_id", companyID),
			zap.Int("year", year),
			zap.Int("sequence", sequence),
			zap.Error(err))
	}
}

// uploadAttachments stores files sequentially under the letter's folder.
// Each failure is collected and the rest continue.
func (s *LetterService) uploadAttachments(ctx context.Context, folder, reference string, uploads []AttachmentUpload) []AttachmentFailure {
	var failures []AttachmentFailure

	if err := s.blobs.EnsureFolder(ctx, folder); err != nil {
		s.logger.Warn("Failed to ensure attachment folder",
			zap.String("folder", folder), zap.Error(err))
		for _, u := range uploads {
			failures = append(failures, AttachmentFailure{Name: u.Name, Reason: err.Error()})
		}
		return failures
	}

	for _, u := range uploads {
		storedName := letters.StoredFileName(reference, u.Name)
		path := folder + "/" + storedName
		if _, err := s.blobs.Put(ctx, path, u.Data, u.ContentType); err != nil {
			s.logger.Warn("Failed to upload attachment",
				zap.String("path", path), zap.Error(err))
			failures = append(failures, AttachmentFailure{Name: u.Name, Reason: err.Error()})
			continue
		}
		s.logger.Debug("Attachment uploaded", zap.String("path", path))
	}
	return failures
}

// fetchAttachments lists the letter's folder and keeps blobs whose name
// carries the letter's reference prefix.
func (s *LetterService) fetchAttachments(ctx context.Context, letter letters.Letter) ([]letters.Attachment, error) {
	folder := letters.LetterFolder(s.libraryRoot, letters.Company{
		Name:         letter.CompanyName,
		Abbreviation: letter.CompanyAbbreviation,
	})
	blobs, err := s.blobs.List(ctx, folder)
	if err != nil {
		s.logger.Error("Failed to list attachment folder",
			zap.String("folder", folder), zap.Error(err))
		return nil, shared.NewStoreError("failed to list attachments")
	}

	prefix := letters.AttachmentPrefix(letter.ReferenceNumber)
	attachments := make([]letters.Attachment, 0, len(blobs))
	for _, b := range blobs {
		if !strings.HasPrefix(strings.ToLower(b.Name), prefix) {
			continue
		}
		attachments = append(attachments, letters.Attachment{
			Name:    b.Name,
			Path:    b.Path,
			Size:    b.Size,
			ViewURL: b.ViewURL,
		})
	}
	return attachments, nil
}

// refreshAttachments best-effort reloads a letter's attachment listing
// after uploads or removals.
func (s *LetterService) refreshAttachments(ctx context.Context, letter *letters.Letter) {
	attachments, err := s.fetchAttachments(ctx, *letter)
	if err != nil {
		return
	}
	letter.Attachments = attachments
	letter.AttachmentsLoaded = true
	s.state.SetLetterAttachments(letter.ID, attachments)
}
