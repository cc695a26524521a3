// Package credential issues course certificates and verifies holders against
// their enrollment identity.
package credential

import (
	"context"
	"errors"
	"fmt"
	"time"

	"institute/errdefs"
	"institute/logger"
	"institute/models"
	"institute/services/notification"
	"institute/services/storage"

	"go.uber.org/zap"
)

const maxIssueAttempts = 3

type Store interface {
	GetRecipient(ctx context.Context, studentID uint) (*models.Recipient, error)
	GetCertificateByStudent(ctx context.Context, studentID uint) (*models.CertificateRecord, error)
	InsertCertificateRecord(ctx context.Context, rec *models.CertificateRecord) (*models.CertificateRecord, error)
	SetCertificateURL(ctx context.Context, studentID uint, url *string) (*models.CertificateRecord, error)
	GetCertificateAndIdentity(ctx context.Context, certificateID string) (*models.CertificateIdentity, error)
}

// IDGenerator reserves certificate IDs.
type IDGenerator interface {
	NextCertificateID(ctx context.Context, now time.Time) (string, error)
}

type Options struct {
	SendTimeout time.Duration
	Institute   string
}

type Service struct {
	store       Store
	ids         IDGenerator
	objects     storage.ObjectStore
	sender      notification.Sender
	sendTimeout time.Duration
	institute   string
	log         *logger.Logger
	now         func() time.Time
}

func New(store Store, ids IDGenerator, objects storage.ObjectStore, sender notification.Sender, opts Options, log *logger.Logger) *Service {
	return &Service{
		store:       store,
		ids:         ids,
		objects:     objects,
		sender:      sender,
		sendTimeout: opts.SendTimeout,
		institute:   opts.Institute,
		log:         log,
		now:         time.Now,
	}
}

// Artifact is an uploaded certificate file.
type Artifact struct {
	Filename string
	Data     []byte
}

type IssueResult struct {
	Record   *models.CertificateRecord `json:"record"`
	Created  bool                      `json:"created"`
	Notified bool                      `json:"notified"`
}

// Issue stores the artifact and attaches it to the student's certificate. A
// student who already holds an ID keeps it; otherwise a new one is reserved.
func (s *Service) Issue(ctx context.Context, studentID uint, artifact Artifact) (*IssueResult, error) {
	if err := validateArtifact(studentID, artifact); err != nil {
		return nil, err
	}
	recipient, err := s.store.GetRecipient(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("student %d: %w", studentID, err)
	}

	existing, err := s.store.GetCertificateByStudent(ctx, studentID)
	if err != nil && !errors.Is(err, errdefs.ErrNotFound) {
		return nil, err
	}

	url, err := s.storeArtifact(ctx, studentID, artifact)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		rec, err := s.store.SetCertificateURL(ctx, studentID, &url)
		if err != nil {
			return nil, err
		}
		s.log.Info("certificate artifact replaced", zap.Uint("student_id", studentID), zap.String("certificate_id", rec.CertificateID))
		return &IssueResult{Record: rec}, nil
	}

	rec, created, err := s.createRecord(ctx, studentID, url)
	if err != nil {
		return nil, err
	}
	res := &IssueResult{Record: rec, Created: created}
	if created {
		s.log.Info("certificate issued", zap.Uint("student_id", studentID), zap.String("certificate_id", rec.CertificateID))
		res.Notified = s.notifyIssued(ctx, recipient, rec)
	}
	return res, nil
}

// createRecord reserves an ID and inserts the record, drawing a new ID when the
// reserved one is already taken.
func (s *Service) createRecord(ctx context.Context, studentID uint, url string) (*models.CertificateRecord, bool, error) {
	var lastErr error
	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		id, err := s.ids.NextCertificateID(ctx, s.now())
		if err != nil {
			return nil, false, err
		}
		rec, err := s.store.InsertCertificateRecord(ctx, &models.CertificateRecord{
			StudentID:         studentID,
			CertificateID:     id,
			CertificateURL:    &url,
			CertificateStatus: models.CertificateCompleted,
			IssuedAt:          s.now(),
		})
		if err == nil {
			return rec, true, nil
		}
		if !errors.Is(err, errdefs.ErrDuplicate) {
			return nil, false, fmt.Errorf("save certificate: %w", err)
		}

		// a concurrent issue for the same student may have won the insert
		winner, lookupErr := s.store.GetCertificateByStudent(ctx, studentID)
		if lookupErr == nil {
			return winner, false, nil
		}
		if !errors.Is(lookupErr, errdefs.ErrNotFound) {
			return nil, false, fmt.Errorf("load certificate: %w", lookupErr)
		}
		s.log.Warn("certificate id taken, reserving another", zap.String("certificate_id", id), zap.Int("attempt", attempt))
		lastErr = err
	}
	return nil, false, fmt.Errorf("save certificate after %d attempts: %w", maxIssueAttempts, lastErr)
}

// Update swaps the artifact of an existing certificate. ID and status are kept.
func (s *Service) Update(ctx context.Context, studentID uint, artifact Artifact) (*models.CertificateRecord, error) {
	if err := validateArtifact(studentID, artifact); err != nil {
		return nil, err
	}
	if _, err := s.store.GetCertificateByStudent(ctx, studentID); err != nil {
		return nil, err
	}
	url, err := s.storeArtifact(ctx, studentID, artifact)
	if err != nil {
		return nil, err
	}
	return s.store.SetCertificateURL(ctx, studentID, &url)
}

// DeleteArtifact clears the URL so a later upload reuses the same certificate ID.
func (s *Service) DeleteArtifact(ctx context.Context, studentID uint) (*models.CertificateRecord, error) {
	if _, err := s.store.GetCertificateByStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.store.SetCertificateURL(ctx, studentID, nil)
}

func (s *Service) Get(ctx context.Context, studentID uint) (*models.CertificateRecord, error) {
	return s.store.GetCertificateByStudent(ctx, studentID)
}

func validateArtifact(studentID uint, artifact Artifact) error {
	if studentID == 0 {
		return fmt.Errorf("%w: student_id is required", errdefs.ErrValidationFailed)
	}
	if len(artifact.Data) == 0 {
		return fmt.Errorf("%w: certificate file is required", errdefs.ErrValidationFailed)
	}
	return nil
}

func (s *Service) storeArtifact(ctx context.Context, studentID uint, artifact Artifact) (string, error) {
	url, err := s.objects.Store(ctx, artifact.Data, artifact.Filename)
	if err != nil {
		s.log.Error("store certificate file", zap.Uint("student_id", studentID), zap.Error(err))
		return "", fmt.Errorf("%w: %v", errdefs.ErrUpstreamFailure, err)
	}
	return url, nil
}

func (s *Service) notifyIssued(ctx context.Context, recipient *models.Recipient, rec *models.CertificateRecord) bool {
	data := notification.Data{
		Institute:     s.institute,
		StudentName:   recipient.Name,
		CertificateID: rec.CertificateID,
	}
	if rec.CertificateURL != nil {
		data.CertificateURL = *rec.CertificateURL
	}
	err := notification.Deliver(context.WithoutCancel(ctx), s.sender, s.sendTimeout, recipient.Email, notification.KindCertificate, data)
	if err != nil {
		s.log.Warn("certificate notification failed", zap.Uint("student_id", rec.StudentID), zap.Error(err))
		return false
	}
	return true
}
