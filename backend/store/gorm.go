package store

import (
	"errors"
	"time"

	"campus/backend/models"

	"gorm.io/gorm"
)

// GormStore persists everything through gorm. The same code serves the
// sqlite (local single-device) and postgres backends.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// Migrate creates the schema for every record kind the store manages.
func (s *GormStore) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CourseModule{},
		&models.VideoUnit{},
		&models.Assignment{},
		&models.EnrollmentRecord{},
		&models.ProgressRecord{},
		&models.AssignmentSubmission{},
		&models.PaymentTransaction{},
	)
}

func (s *GormStore) CreateUser(user *models.User) error {
	return s.DB.Create(user).Error
}

func (s *GormStore) UserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) UserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *GormStore) CreateCourse(course *models.Course) error {
	return s.DB.Create(course).Error
}

func (s *GormStore) AddVideo(courseID uint, video *models.VideoUnit) error {
	video.CourseID = courseID
	return s.DB.Create(video).Error
}

func (s *GormStore) AddAssignment(courseID uint, assignment *models.Assignment) error {
	assignment.CourseID = courseID
	return s.DB.Create(assignment).Error
}

func (s *GormStore) CourseByID(id uint) (*models.Course, error) {
	var course models.Course
	err := s.DB.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order")
		}).
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order")
		}).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence_order")
		}).
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (s *GormStore) Courses() ([]models.Course, error) {
	var courses []models.Course
	if err := s.DB.Preload("Videos", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence_order")
	}).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *GormStore) Enrollment(userID, courseID uint) (models.EnrollmentRecord, error) {
	var record models.EnrollmentRecord
	err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.EnrollmentRecord{UserID: userID, CourseID: courseID}, nil
	}
	if err != nil {
		return models.EnrollmentRecord{UserID: userID, CourseID: courseID}, err
	}
	return record, nil
}

func (s *GormStore) AddPurchasedVideo(userID, courseID uint, videoID int) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.EnrollmentRecord
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = models.EnrollmentRecord{UserID: userID, CourseID: courseID}
		} else if err != nil {
			return err
		}
		if !record.PurchasedVideoIDs.Add(videoID) {
			return nil
		}
		return tx.Save(&record).Error
	})
}

func (s *GormStore) CommitEnrollment(userID, courseID uint, at time.Time) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var record models.EnrollmentRecord
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			record = models.EnrollmentRecord{UserID: userID, CourseID: courseID}
		} else if err != nil {
			return err
		}
		record.Enrolled = true
		record.EnrolledAt = &at
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		var progress models.ProgressRecord
		err = tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.ProgressRecord{UserID: userID, CourseID: courseID}
		} else if err != nil {
			return err
		}
		progress.CompletedVideoIDs = models.IDList{}
		progress.LastWatchedVideoID = nil
		progress.LastActivityAt = at
		return tx.Save(&progress).Error
	})
}

func (s *GormStore) Progress(userID, courseID uint) (models.ProgressRecord, error) {
	var record models.ProgressRecord
	err := s.DB.Where("user_id = ? AND course_id = ?", userID, courseID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ProgressRecord{UserID: userID, CourseID: courseID}, nil
	}
	if err != nil {
		return models.ProgressRecord{UserID: userID, CourseID: courseID}, err
	}
	return record, nil
}

func (s *GormStore) HasProgress(userID, courseID uint) (bool, error) {
	var count int64
	err := s.DB.Model(&models.ProgressRecord{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) SaveProgress(record *models.ProgressRecord) error {
	return s.DB.Save(record).Error
}

func (s *GormStore) Submission(userID, assignmentID uint) (models.AssignmentSubmission, error) {
	var submission models.AssignmentSubmission
	err := s.DB.Where("user_id = ? AND assignment_id = ?", userID, assignmentID).First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AssignmentSubmission{
			UserID:       userID,
			AssignmentID: assignmentID,
			Status:       models.SubmissionNotStarted,
		}, nil
	}
	if err != nil {
		return models.AssignmentSubmission{
			UserID:       userID,
			AssignmentID: assignmentID,
			Status:       models.SubmissionNotStarted,
		}, err
	}
	return submission, nil
}

func (s *GormStore) SaveSubmission(submission *models.AssignmentSubmission) error {
	return s.DB.Save(submission).Error
}

func (s *GormStore) SaveTransaction(tx *models.PaymentTransaction) error {
	return s.DB.Save(tx).Error
}

func (s *GormStore) Transactions(userID uint) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	if err := s.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}
