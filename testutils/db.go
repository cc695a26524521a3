package testutils

import (
	"fmt"
	"strings"
	"testing"

	"institute/database"
	"institute/models"

	"github.com/stretchr/testify/require"
)

// NewStore returns a store over a private in-memory sqlite database.
func NewStore(t *testing.T) *database.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return database.NewStore(db)
}

// Identity carries the optional verification fields of a seeded student.
type Identity struct {
	Phone  string
	Aadhar string
	Pan    string
}

// SeedStudent creates a student enrolled in batch.
func SeedStudent(t *testing.T, store *database.Store, name, email, batch string, id ...Identity) models.Student {
	t.Helper()

	student := models.Student{Name: name, Email: email}
	if len(id) > 0 {
		student.Phone = id[0].Phone
		student.Aadhar = id[0].Aadhar
		student.Pan = id[0].Pan
	}
	require.NoError(t, store.DB().Create(&student).Error)

	if batch != "" {
		enrollment := models.Enrollment{StudentID: student.ID, Batch: batch, Course: "course-" + batch}
		require.NoError(t, store.DB().Create(&enrollment).Error)
	}
	return student
}
