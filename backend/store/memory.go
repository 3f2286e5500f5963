package store

import (
	"sort"
	"sync"
	"time"

	"campus/backend/models"
)

// MemoryStore keeps everything in maps behind one mutex. It backs the
// engine and HTTP tests and doubles as a throwaway dev backend.
type MemoryStore struct {
	mu sync.Mutex

	nextUserID   uint
	nextCourseID uint
	nextRowID    uint

	users       map[uint]*models.User
	courses     map[uint]*models.Course
	enrollments map[[2]uint]*models.EnrollmentRecord
	progress    map[[2]uint]*models.ProgressRecord
	submissions map[[2]uint]*models.AssignmentSubmission
	payments    []models.PaymentTransaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[uint]*models.User),
		courses:     make(map[uint]*models.Course),
		enrollments: make(map[[2]uint]*models.EnrollmentRecord),
		progress:    make(map[[2]uint]*models.ProgressRecord),
		submissions: make(map[[2]uint]*models.AssignmentSubmission),
	}
}

func (s *MemoryStore) CreateUser(user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	user.ID = s.nextUserID
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *MemoryStore) UserByID(id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryStore) UserByEmail(email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateCourse(course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCourseID++
	course.ID = s.nextCourseID
	for i := range course.Videos {
		course.Videos[i].CourseID = course.ID
	}
	for i := range course.Assignments {
		s.nextRowID++
		course.Assignments[i].ID = s.nextRowID
		course.Assignments[i].CourseID = course.ID
	}
	for i := range course.Modules {
		course.Modules[i].CourseID = course.ID
	}
	clone := cloneCourse(course)
	s.courses[course.ID] = clone
	return nil
}

func (s *MemoryStore) AddVideo(courseID uint, video *models.VideoUnit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[courseID]
	if !ok {
		return ErrNotFound
	}
	video.CourseID = courseID
	course.Videos = append(course.Videos, *video)
	sortCourse(course)
	return nil
}

func (s *MemoryStore) AddAssignment(courseID uint, assignment *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[courseID]
	if !ok {
		return ErrNotFound
	}
	s.nextRowID++
	assignment.ID = s.nextRowID
	assignment.CourseID = courseID
	course.Assignments = append(course.Assignments, *assignment)
	sortCourse(course)
	return nil
}

func (s *MemoryStore) CourseByID(id uint) (*models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	course, ok := s.courses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCourse(course), nil
}

func (s *MemoryStore) Courses() ([]models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint, 0, len(s.courses))
	for id := range s.courses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	courses := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		courses = append(courses, *cloneCourse(s.courses[id]))
	}
	return courses, nil
}

func (s *MemoryStore) Enrollment(userID, courseID uint) (models.EnrollmentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.enrollments[[2]uint{userID, courseID}]; ok {
		clone := *record
		clone.PurchasedVideoIDs = append(models.IDList{}, record.PurchasedVideoIDs...)
		return clone, nil
	}
	return models.EnrollmentRecord{UserID: userID, CourseID: courseID}, nil
}

func (s *MemoryStore) AddPurchasedVideo(userID, courseID uint, videoID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uint{userID, courseID}
	record, ok := s.enrollments[key]
	if !ok {
		record = &models.EnrollmentRecord{UserID: userID, CourseID: courseID}
		s.enrollments[key] = record
	}
	record.PurchasedVideoIDs.Add(videoID)
	return nil
}

func (s *MemoryStore) CommitEnrollment(userID, courseID uint, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uint{userID, courseID}
	record, ok := s.enrollments[key]
	if !ok {
		record = &models.EnrollmentRecord{UserID: userID, CourseID: courseID}
		s.enrollments[key] = record
	}
	record.Enrolled = true
	enrolledAt := at
	record.EnrolledAt = &enrolledAt
	s.progress[key] = &models.ProgressRecord{
		UserID:            userID,
		CourseID:          courseID,
		CompletedVideoIDs: models.IDList{},
		LastActivityAt:    at,
	}
	return nil
}

func (s *MemoryStore) Progress(userID, courseID uint) (models.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.progress[[2]uint{userID, courseID}]; ok {
		clone := *record
		clone.CompletedVideoIDs = append(models.IDList{}, record.CompletedVideoIDs...)
		return clone, nil
	}
	return models.ProgressRecord{UserID: userID, CourseID: courseID}, nil
}

func (s *MemoryStore) HasProgress(userID, courseID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.progress[[2]uint{userID, courseID}]
	return ok, nil
}

func (s *MemoryStore) SaveProgress(record *models.ProgressRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *record
	clone.CompletedVideoIDs = append(models.IDList{}, record.CompletedVideoIDs...)
	s.progress[[2]uint{record.UserID, record.CourseID}] = &clone
	return nil
}

func (s *MemoryStore) Submission(userID, assignmentID uint) (models.AssignmentSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if submission, ok := s.submissions[[2]uint{userID, assignmentID}]; ok {
		clone := *submission
		return clone, nil
	}
	return models.AssignmentSubmission{
		UserID:       userID,
		AssignmentID: assignmentID,
		Status:       models.SubmissionNotStarted,
	}, nil
}

func (s *MemoryStore) SaveSubmission(submission *models.AssignmentSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *submission
	s.submissions[[2]uint{submission.UserID, submission.AssignmentID}] = &clone
	return nil
}

func (s *MemoryStore) SaveTransaction(tx *models.PaymentTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.payments {
		if s.payments[i].TxID == tx.TxID {
			s.payments[i] = *tx
			return nil
		}
	}
	s.nextRowID++
	tx.ID = s.nextRowID
	s.payments = append(s.payments, *tx)
	return nil
}

func (s *MemoryStore) Transactions(userID uint) ([]models.PaymentTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var txs []models.PaymentTransaction
	for i := len(s.payments) - 1; i >= 0; i-- {
		if s.payments[i].UserID == userID {
			txs = append(txs, s.payments[i])
		}
	}
	return txs, nil
}

func cloneCourse(course *models.Course) *models.Course {
	clone := *course
	clone.Modules = append([]models.CourseModule{}, course.Modules...)
	clone.Videos = append([]models.VideoUnit{}, course.Videos...)
	clone.Assignments = append([]models.Assignment{}, course.Assignments...)
	return &clone
}

func sortCourse(course *models.Course) {
	sort.SliceStable(course.Videos, func(i, j int) bool {
		return course.Videos[i].SequenceOrder < course.Videos[j].SequenceOrder
	})
	sort.SliceStable(course.Assignments, func(i, j int) bool {
		return course.Assignments[i].SequenceOrder < course.Assignments[j].SequenceOrder
	})
	sort.SliceStable(course.Modules, func(i, j int) bool {
		return course.Modules[i].SequenceOrder < course.Modules[j].SequenceOrder
	})
}
