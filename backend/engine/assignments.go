package engine

import (
	"time"

	"campus/backend/models"
	"campus/backend/store"
)

// Assignment actions dispatched by the UI.
const (
	ActionStart    = "start"
	ActionContinue = "continue"
	ActionSubmit   = "submit"
	ActionReview   = "review"
)

// AssignmentTracker enforces the forward-only submission lifecycle:
// not_started -> in_progress -> submitted -> completed. Invalid moves
// are rejected without mutating or persisting anything.
type AssignmentTracker struct {
	Store store.Store
}

func NewAssignmentTracker(st store.Store) *AssignmentTracker {
	return &AssignmentTracker{Store: st}
}

// Status returns the user's submission for an assignment, defaulting
// to not_started.
func (t *AssignmentTracker) Status(userID uint, assignment *models.Assignment) (models.AssignmentSubmission, error) {
	return t.Store.Submission(userID, assignment.ID)
}

// ApplyAction runs one user action against the lifecycle. Every
// action requires course enrollment. start and submit move the status
// and stamp startedAt/submittedAt; continue and review only validate
// that the assignment is in a state where the action makes sense.
func (t *AssignmentTracker) ApplyAction(userID uint, course *models.Course, assignmentID int, action string) (models.AssignmentSubmission, error) {
	assignment := course.AssignmentByID(assignmentID)
	if assignment == nil {
		return models.AssignmentSubmission{}, ErrUnknownUnit
	}
	enrollment, err := t.Store.Enrollment(userID, course.ID)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	if !enrollment.Enrolled {
		return models.AssignmentSubmission{}, ErrAccessDenied
	}

	submission, err := t.Store.Submission(userID, assignment.ID)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	submission.CourseID = course.ID

	now := time.Now()
	switch action {
	case ActionStart:
		if submission.Status != models.SubmissionNotStarted {
			return submission, ErrInvalidTransition
		}
		submission.Status = models.SubmissionInProgress
		submission.StartedAt = &now
	case ActionSubmit:
		if submission.Status != models.SubmissionInProgress {
			return submission, ErrInvalidTransition
		}
		submission.Status = models.SubmissionSubmitted
		submission.SubmittedAt = &now
	case ActionContinue:
		if submission.Status != models.SubmissionInProgress {
			return submission, ErrInvalidTransition
		}
		return submission, nil
	case ActionReview:
		if submission.Status != models.SubmissionSubmitted && submission.Status != models.SubmissionCompleted {
			return submission, ErrInvalidTransition
		}
		return submission, nil
	default:
		return submission, ErrInvalidTransition
	}

	if err := t.Store.SaveSubmission(&submission); err != nil {
		return models.AssignmentSubmission{}, err
	}
	return submission, nil
}

// Complete is the grading step that moves submitted -> completed. It
// sits outside ApplyAction because reviewing never mutates; only an
// instructor decision does.
func (t *AssignmentTracker) Complete(userID uint, course *models.Course, assignmentID int) (models.AssignmentSubmission, error) {
	assignment := course.AssignmentByID(assignmentID)
	if assignment == nil {
		return models.AssignmentSubmission{}, ErrUnknownUnit
	}
	submission, err := t.Store.Submission(userID, assignment.ID)
	if err != nil {
		return models.AssignmentSubmission{}, err
	}
	if submission.Status != models.SubmissionSubmitted {
		return submission, ErrInvalidTransition
	}
	submission.CourseID = course.ID
	submission.Status = models.SubmissionCompleted
	if err := t.Store.SaveSubmission(&submission); err != nil {
		return models.AssignmentSubmission{}, err
	}
	return submission, nil
}
