package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// IDList is a set of course-scoped video ids stored as a JSON array in
// a text column. Malformed stored data decodes to an empty list rather
// than failing the read.
type IDList []int

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *IDList) Scan(value interface{}) error {
	*l = IDList{}
	if value == nil {
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}
	var ids []int
	if err := json.Unmarshal(raw, &ids); err != nil {
		// Corrupt stored state falls back to empty, never fatal.
		return nil
	}
	*l = ids
	return nil
}

func (l IDList) Contains(id int) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id if absent and reports whether the list changed.
func (l *IDList) Add(id int) bool {
	if l.Contains(id) {
		return false
	}
	*l = append(*l, id)
	return true
}

// EnrollmentRecord is the per-course entitlement of one user. When
// Enrolled is true every unit of the course is accessible and
// PurchasedVideoIDs is not consulted.
type EnrollmentRecord struct {
	gorm.Model
	UserID            uint `gorm:"index:idx_user_course_enrollment,unique"`
	CourseID          uint `gorm:"index:idx_user_course_enrollment,unique"`
	Enrolled          bool
	EnrolledAt        *time.Time
	PurchasedVideoIDs IDList `gorm:"type:text"`
}

// ProgressRecord tracks which units of a course a user has completed.
type ProgressRecord struct {
	gorm.Model
	UserID             uint   `gorm:"index:idx_user_course_progress,unique"`
	CourseID           uint   `gorm:"index:idx_user_course_progress,unique"`
	CompletedVideoIDs  IDList `gorm:"type:text"`
	LastWatchedVideoID *int
	LastActivityAt     time.Time
}

// Assignment submission statuses. Transitions move forward only.
const (
	SubmissionNotStarted = "not_started"
	SubmissionInProgress = "in_progress"
	SubmissionSubmitted  = "submitted"
	SubmissionCompleted  = "completed"
)

type AssignmentSubmission struct {
	gorm.Model
	UserID       uint `gorm:"index:idx_user_assignment,unique"`
	CourseID     uint
	AssignmentID uint `gorm:"index:idx_user_assignment,unique"` // catalog row id
	Status       string
	StartedAt    *time.Time
	SubmittedAt  *time.Time
}

// Payment transaction kinds and statuses.
const (
	PaymentKindEnrollment = "enrollment"
	PaymentKindVideo      = "video"

	PaymentPending = "pending"
	PaymentSettled = "settled"
	PaymentFailed  = "failed"
)

// PaymentTransaction is the audit trail of settlement attempts.
type PaymentTransaction struct {
	gorm.Model
	TxID     string `gorm:"uniqueIndex"`
	UserID   uint   `gorm:"index"`
	CourseID uint
	VideoID  int // 0 for enrollment transactions
	Kind     string
	Amount   int
	Status   string
}
