package database

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"institute/models"

	"gorm.io/gorm"
)

// ImportStats counts what ImportRoster did.
type ImportStats struct {
	Inserted    int
	Updated     int
	Enrollments int
	Skipped     int
}

// ImportRoster loads students and their batch enrollments from CSV with the
// header name,email,phone,aadhar,pan,batch,course. Students are matched by email.
func (s *Store) ImportRoster(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return stats, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return stats, errors.New("csv file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := headerIndex["email"]; !ok {
		return stats, errors.New("csv header must include email")
	}

	db := s.db.WithContext(ctx)
	for _, row := range records[1:] {
		student := models.Student{
			Name:   getField(row, headerIndex, "name"),
			Email:  strings.ToLower(getField(row, headerIndex, "email")),
			Phone:  getField(row, headerIndex, "phone"),
			Aadhar: getField(row, headerIndex, "aadhar"),
			Pan:    strings.ToUpper(getField(row, headerIndex, "pan")),
		}
		batch := getField(row, headerIndex, "batch")
		if student.Email == "" {
			stats.Skipped++
			continue
		}

		var existing models.Student
		err := db.Where("email = ? AND is_deleted = ?", student.Email, false).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&student).Error; err != nil {
				return stats, fmt.Errorf("insert %s: %w", student.Email, translate(err))
			}
			existing = student
			stats.Inserted++
		case err != nil:
			return stats, translate(err)
		default:
			// blank cells keep the stored value
			updates := map[string]interface{}{}
			for column, value := range map[string]string{
				"name": student.Name, "phone": student.Phone, "aadhar": student.Aadhar, "pan": student.Pan,
			} {
				if value != "" {
					updates[column] = value
				}
			}
			if len(updates) > 0 {
				if err := db.Model(&existing).Updates(updates).Error; err != nil {
					return stats, fmt.Errorf("update %s: %w", student.Email, translate(err))
				}
			}
			stats.Updated++
		}

		if batch == "" {
			continue
		}
		var enrolled int64
		if err := db.Model(&models.Enrollment{}).
			Where("student_id = ? AND batch = ? AND is_deleted = ?", existing.ID, batch, false).
			Count(&enrolled).Error; err != nil {
			return stats, translate(err)
		}
		if enrolled > 0 {
			continue
		}
		enrollment := models.Enrollment{StudentID: existing.ID, Batch: batch, Course: getField(row, headerIndex, "course")}
		if err := db.Create(&enrollment).Error; err != nil {
			return stats, fmt.Errorf("enroll %s: %w", student.Email, translate(err))
		}
		stats.Enrollments++
	}
	return stats, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
