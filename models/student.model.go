package models

import "gorm.io/gorm"

// Student and Enrollment are owned by the student records screens; the core only reads them.
type Student struct {
	gorm.Model
	Name      string `json:"name" gorm:"default:''"`
	Email     string `json:"email" gorm:"index;not null"`
	Phone     string `json:"phone" gorm:"default:''"`
	Aadhar    string `json:"aadhar" gorm:"default:''"`
	Pan       string `json:"pan" gorm:"default:''"`
	IsDeleted bool   `json:"-" gorm:"default:false"`
}

type Enrollment struct {
	gorm.Model
	StudentID uint    `json:"student_id" gorm:"index;not null"`
	Batch     string  `json:"batch" gorm:"index;not null"`
	Course    string  `json:"course" gorm:"default:''"`
	Status    string  `json:"status" gorm:"default:'ENROLLED'"`
	IsDeleted bool    `json:"-" gorm:"default:false"`
	Student   Student `json:"-" gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE"`
}

// Recipient is a student resolved for a notification.
type Recipient struct {
	StudentID uint   `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}
