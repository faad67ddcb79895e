package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository"
)

// RoundGate reports whether a round is open.
type RoundGate interface {
	IsOpen(round string) bool
}

// SubmissionConfig holds the submission rules.
type SubmissionConfig struct {
	// Round is the round whose completion flag a submission sets
	Round string
	// RequireOpenRound rejects submissions while Round is locked
	RequireOpenRound bool
	// MaxBytes is the upload size limit
	MaxBytes int64
}

// Upload is a file offered for submission.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// SubmissionService stores a team's round submission.
type SubmissionService struct {
	teams  repository.TeamRepository
	blobs  repository.BlobStore
	gate   RoundGate
	audit  *AuditService
	logger *logging.Logger
	policy CallPolicy
	cfg    SubmissionConfig
	now    func() time.Time
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	teams repository.TeamRepository,
	blobs repository.BlobStore,
	gate RoundGate,
	audit *AuditService,
	logger *logging.Logger,
	policy CallPolicy,
	cfg SubmissionConfig,
) *SubmissionService {
	return &SubmissionService{
		teams:  teams,
		blobs:  blobs,
		gate:   gate,
		audit:  audit,
		logger: logger,
		policy: policy,
		cfg:    cfg,
		now:    time.Now,
	}
}

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizePathSegment reduces s to a storage-safe path segment.
func SanitizePathSegment(s string) string {
	safe := strings.Trim(unsafePathChars.ReplaceAllString(strings.TrimSpace(s), "_"), "_.")
	if safe == "" {
		return "_"
	}
	return safe
}

// SubmissionPath returns submissions/{sanitizedTeamName}/{fileName}.
func SubmissionPath(teamName, fileName string) string {
	return fmt.Sprintf("submissions/%s/%s", SanitizePathSegment(teamName), fileName)
}

// baseFileName strips any directory components a client sent.
func baseFileName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}

// Submit uploads the file for the principal's team and records it on the
// team. The caller re-publishes the session's team afterwards.
func (s *SubmissionService) Submit(ctx context.Context, principal *models.Principal, upload Upload) (*models.Submission, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "SubmissionService.Submit")
	defer span.End()

	if !principal.HasTeam() {
		return nil, ErrNotInTeam
	}
	fileName := baseFileName(upload.FileName)
	if fileName == "" {
		return nil, invalidInput("file name is required")
	}
	if s.cfg.MaxBytes > 0 && upload.Size > s.cfg.MaxBytes {
		return nil, ErrFileTooLarge
	}
	if s.cfg.RequireOpenRound && s.gate != nil && !s.gate.IsOpen(s.cfg.Round) {
		return nil, ErrRoundLocked
	}

	team, err := read(ctx, s.policy, func(ctx context.Context) (*models.Team, error) {
		return s.teams.Get(ctx, principal.TeamID)
	})
	if err != nil {
		return nil, repoError(err, ErrTeamNotFound)
	}

	objectPath := SubmissionPath(team.Name, fileName)
	span.SetAttributes(attribute.String("team.id", team.ID), attribute.String("submission.path", objectPath))

	body := upload.Body
	if s.cfg.MaxBytes > 0 {
		body = io.LimitReader(body, s.cfg.MaxBytes)
	}

	var url string
	err = s.policy.write(ctx, func(ctx context.Context) error {
		var err error
		url, err = s.blobs.Put(ctx, objectPath, upload.ContentType, body)
		return err
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, ErrSubmissionExists.Wrap(err)
	}
	if err != nil {
		return nil, repoError(err, nil)
	}

	submission := &models.Submission{
		URL:  url,
		Path: objectPath,
		Time: s.now().UTC(),
	}
	if err := s.policy.write(ctx, func(ctx context.Context) error {
		return s.teams.SetSubmission(ctx, team.ID, submission, s.cfg.Round)
	}); err != nil {
		s.discardBlob(ctx, objectPath)
		return nil, repoError(err, ErrTeamNotFound)
	}

	s.audit.Log(ctx, AuditEventSubmission, principal, "", map[string]interface{}{
		"team": team.ID,
		"path": objectPath,
	})
	return submission, nil
}

// discardBlob removes an upload the team record never referenced, so the
// same file name can be submitted again. Failures are only logged.
func (s *SubmissionService) discardBlob(ctx context.Context, objectPath string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.policy.write(ctx, func(ctx context.Context) error {
		return s.blobs.Delete(ctx, objectPath)
	}); err != nil {
		s.logger.Warn("Failed to remove unrecorded submission %s: %v", objectPath, err)
	}
}
