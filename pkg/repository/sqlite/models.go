// Package sqlite implements the user and task stores on GORM for the SQLite driver.
package sqlite

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskhub/backend/pkg/auth"
	"github.com/taskhub/backend/pkg/task"
)

type userRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"uniqueIndex:users_email_key;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"not null;default:USER"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

func (u userRecord) toDomain() auth.User {
	return auth.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         auth.Role(u.Role),
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

type taskRecord struct {
	ID             int64      `gorm:"primaryKey;autoIncrement"`
	Title          string     `gorm:"not null"`
	Description    string     `gorm:"not null;default:''"`
	Status         string     `gorm:"not null;default:TODO"`
	AssignedUserID int64      `gorm:"not null;index"`
	AssignedUser   userRecord `gorm:"foreignKey:AssignedUserID;constraint:OnDelete:RESTRICT"`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

func (taskRecord) TableName() string { return "tasks" }

func (t taskRecord) toDomain() task.Task {
	return task.Task{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         task.Status(t.Status),
		AssignedUserID: t.AssignedUserID,
		CreatedAt:      t.CreatedAt.UTC(),
		UpdatedAt:      t.UpdatedAt.UTC(),
	}
}

// Migrate creates or updates the users and tasks tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRecord{}, &taskRecord{})
}
