package store

import (
	"errors"
	"time"

	"campus/backend/models"
)

// ErrNotFound is returned for catalog and user lookups that miss.
// Per-user state lookups never return it: a missing enrollment,
// progress or submission row reads as its zero-value default.
var ErrNotFound = errors.New("store: record not found")

type UserStore interface {
	CreateUser(user *models.User) error
	UserByID(id uint) (*models.User, error)
	UserByEmail(email string) (*models.User, error)
}

type CatalogStore interface {
	CreateCourse(course *models.Course) error
	AddVideo(courseID uint, video *models.VideoUnit) error
	AddAssignment(courseID uint, assignment *models.Assignment) error
	// CourseByID returns the course with videos, modules and
	// assignments preloaded in catalog (sequence) order.
	CourseByID(id uint) (*models.Course, error)
	Courses() ([]models.Course, error)
}

type EnrollmentStore interface {
	// Enrollment returns the user's record for the course, or an
	// empty (not enrolled) record when none exists.
	Enrollment(userID, courseID uint) (models.EnrollmentRecord, error)
	// AddPurchasedVideo records a settled per-video purchase.
	AddPurchasedVideo(userID, courseID uint, videoID int) error
	// CommitEnrollment atomically marks the user enrolled and
	// overwrites their progress with a fresh empty record. Either
	// both writes land or neither does.
	CommitEnrollment(userID, courseID uint, at time.Time) error
}

type ProgressStore interface {
	// Progress returns the user's record for the course, or an empty
	// record when none exists.
	Progress(userID, courseID uint) (models.ProgressRecord, error)
	HasProgress(userID, courseID uint) (bool, error)
	SaveProgress(record *models.ProgressRecord) error
}

type SubmissionStore interface {
	// Submission returns the user's submission for the assignment
	// catalog row, defaulting to not_started when none exists.
	Submission(userID, assignmentID uint) (models.AssignmentSubmission, error)
	SaveSubmission(submission *models.AssignmentSubmission) error
}

type PaymentStore interface {
	SaveTransaction(tx *models.PaymentTransaction) error
	Transactions(userID uint) ([]models.PaymentTransaction, error)
}

// Store is the full persistence contract consumed by the engine and
// controllers. Backends: gorm (sqlite or postgres) and in-memory.
type Store interface {
	UserStore
	CatalogStore
	EnrollmentStore
	ProgressStore
	SubmissionStore
	PaymentStore
}
