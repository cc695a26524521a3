package database

import (
	"context"
	"strconv"
	"strings"

	"institute/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetMaxCertificateSequence returns the highest numeric suffix among certificate IDs
// starting with idPrefix (e.g. "CERT2025NYST"), or 0 when there are none.
func (s *Store) GetMaxCertificateSequence(ctx context.Context, idPrefix string) (int, error) {
	return maxCertificateSequence(s.db.WithContext(ctx), idPrefix)
}

func maxCertificateSequence(db *gorm.DB, idPrefix string) (int, error) {
	var ids []string
	if err := db.Model(&models.CertificateRecord{}).
		Where("certificate_id LIKE ?", idPrefix+"%").
		Pluck("certificate_id", &ids).Error; err != nil {
		return 0, translate(err)
	}

	max := 0
	for _, id := range ids {
		n, err := strconv.Atoi(strings.TrimPrefix(id, idPrefix))
		if err != nil {
			continue // belongs to a longer prefix
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// NextCertificateSequence reserves the next value of the (year, prefix) counter.
// The counter row is upserted and re-read inside one transaction, so concurrent
// callers never observe the same value. A fresh counter is seeded past any
// certificate IDs already stored for the scope.
func (s *Store) NextCertificateSequence(ctx context.Context, year int, prefix, idPrefix string) (int, error) {
	var next int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed, err := maxCertificateSequence(tx, idPrefix)
		if err != nil {
			return err
		}

		row := models.CertificateSequence{Year: year, Prefix: prefix, CurrentSeq: seed + 1}
		err = tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "year"}, {Name: "prefix"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"current_seq": gorm.Expr("certificate_sequences.current_seq + 1"),
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		var current models.CertificateSequence
		if err := tx.Where("year = ? AND prefix = ?", year, prefix).First(&current).Error; err != nil {
			return err
		}
		next = current.CurrentSeq
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return next, nil
}

func (s *Store) GetCertificateByStudent(ctx context.Context, studentID uint) (*models.CertificateRecord, error) {
	var rec models.CertificateRecord
	if err := s.db.WithContext(ctx).Where("student_id = ?", studentID).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

// InsertCertificateRecord creates a record. A student that already has one, or
// a certificate_id that is already taken, yields ErrDuplicate.
func (s *Store) InsertCertificateRecord(ctx context.Context, rec *models.CertificateRecord) (*models.CertificateRecord, error) {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, translate(err)
	}
	return s.GetCertificateByStudent(ctx, rec.StudentID)
}

// SetCertificateURL replaces or clears (nil) the artifact URL.
func (s *Store) SetCertificateURL(ctx context.Context, studentID uint, url *string) (*models.CertificateRecord, error) {
	res := s.db.WithContext(ctx).
		Model(&models.CertificateRecord{}).
		Where("student_id = ?", studentID).
		Updates(map[string]interface{}{"certificate_url": url})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	return s.GetCertificateByStudent(ctx, studentID)
}

func (s *Store) GetCertificateAndIdentity(ctx context.Context, certificateID string) (*models.CertificateIdentity, error) {
	var out models.CertificateIdentity
	res := s.db.WithContext(ctx).
		Table("certificate_records").
		Select(`certificate_records.student_id, certificate_records.certificate_id,
			certificate_records.certificate_url, certificate_records.certificate_status,
			students.name, students.email, students.phone, students.aadhar, students.pan`).
		Joins("JOIN students ON students.id = certificate_records.student_id").
		Where("certificate_records.certificate_id = ? AND students.deleted_at IS NULL", certificateID).
		Limit(1).
		Scan(&out)
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound)
	}
	return &out, nil
}
