package models

import "gorm.io/gorm"

// Catalog rows are read-only input to the engine: they are created by
// admins and never mutated by enrollment or progress operations.

type Course struct {
	gorm.Model
	Title         string
	ShortDesc     string
	Description   string
	Difficulty    string // beginner, intermediate, advanced
	Price         int    // cents; ignored when IsFree
	OriginalPrice int    // cents, pre-discount
	IsFree        bool
	Certificate   bool
	Modules       []CourseModule `gorm:"constraint:OnDelete:CASCADE"`
	Videos        []VideoUnit    `gorm:"constraint:OnDelete:CASCADE"`
	Assignments   []Assignment   `gorm:"constraint:OnDelete:CASCADE"`
}

type CourseModule struct {
	gorm.Model
	CourseID      uint
	Name          string
	SequenceOrder int
}

// VideoUnit is a single watchable lesson. VideoID is course-scoped:
// unique within its course, freely reused by other courses.
type VideoUnit struct {
	gorm.Model
	CourseID      uint `gorm:"index:idx_course_video,unique"`
	VideoID       int  `gorm:"index:idx_course_video,unique"`
	ModuleName    string
	Title         string
	Duration      int // seconds
	IsFree        bool
	Price         int // cents, for standalone purchase
	SequenceOrder int
}

// Assignment type tags. An enumerated label, not a subtype hierarchy.
const (
	AssignmentQuiz       = "quiz"
	AssignmentProject    = "project"
	AssignmentDiscussion = "discussion"
	AssignmentCoding     = "coding"
	AssignmentPractical  = "practical"
	AssignmentChallenge  = "challenge"
)

type Assignment struct {
	gorm.Model
	CourseID      uint `gorm:"index:idx_course_assignment,unique"`
	AssignmentID  int  `gorm:"index:idx_course_assignment,unique"`
	ModuleName    string
	Title         string
	Type          string
	Points        int
	DueDate       string
	Difficulty    string
	SequenceOrder int
}

// VideoByID looks a unit up by its course-scoped id.
func (c *Course) VideoByID(videoID int) *VideoUnit {
	for i := range c.Videos {
		if c.Videos[i].VideoID == videoID {
			return &c.Videos[i]
		}
	}
	return nil
}

// AssignmentByID looks an assignment up by its course-scoped id.
func (c *Course) AssignmentByID(assignmentID int) *Assignment {
	for i := range c.Assignments {
		if c.Assignments[i].AssignmentID == assignmentID {
			return &c.Assignments[i]
		}
	}
	return nil
}
