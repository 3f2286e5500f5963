package engine

import (
	"log"
	"math"
	"time"

	"campus/backend/models"
	"campus/backend/store"
)

// Notifier receives the one-shot "unit completed" event. Fired at most
// once per unit per user, on the first threshold crossing.
type Notifier interface {
	UnitCompleted(userID uint, course *models.Course, videoID int)
}

// LogNotifier writes completion events to the application log.
type LogNotifier struct {
	Logger *log.Logger
}

func (n *LogNotifier) UnitCompleted(userID uint, course *models.Course, videoID int) {
	n.Logger.Printf("user %d completed video %d of course %q", userID, videoID, course.Title)
}

// ProgressTracker records watch progress and derives completion state.
type ProgressTracker struct {
	Store     store.Store
	Notifier  Notifier
	Threshold float64 // watched fraction that completes a unit
}

func NewProgressTracker(st store.Store, notifier Notifier, threshold float64) *ProgressTracker {
	if threshold <= 0 {
		threshold = 0.9
	}
	return &ProgressTracker{Store: st, Notifier: notifier, Threshold: threshold}
}

// RecordWatch ingests one (watched fraction) sample for a video. Every
// sample moves lastWatched/lastActivity; crossing the completion
// threshold additionally marks the unit done, exactly once. Requires
// access to the unit and fails closed on unknown ids.
func (t *ProgressTracker) RecordWatch(userID uint, course *models.Course, videoID int, fraction float64) (models.ProgressRecord, error) {
	if course.VideoByID(videoID) == nil {
		return models.ProgressRecord{}, ErrUnknownUnit
	}
	enrollment, err := t.Store.Enrollment(userID, course.ID)
	if err != nil {
		return models.ProgressRecord{}, err
	}
	if !CanAccess(course, videoID, enrollment) {
		return models.ProgressRecord{}, ErrAccessDenied
	}

	progress, err := t.Store.Progress(userID, course.ID)
	if err != nil {
		return models.ProgressRecord{}, err
	}

	id := videoID
	progress.LastWatchedVideoID = &id
	progress.LastActivityAt = time.Now()

	completed := fraction >= t.Threshold && progress.CompletedVideoIDs.Add(videoID)
	if err := t.Store.SaveProgress(&progress); err != nil {
		return models.ProgressRecord{}, err
	}
	if completed && t.Notifier != nil {
		t.Notifier.UnitCompleted(userID, course, videoID)
	}
	return progress, nil
}

// NextUnit is the resume point: the first unit in catalog order not
// yet completed. Once everything is done it wraps to the first unit
// for rewatching. Nil only for a course with no videos.
func NextUnit(course *models.Course, progress models.ProgressRecord) *models.VideoUnit {
	if len(course.Videos) == 0 {
		return nil
	}
	for i := range course.Videos {
		if !progress.CompletedVideoIDs.Contains(course.Videos[i].VideoID) {
			return &course.Videos[i]
		}
	}
	return &course.Videos[0]
}

// CompletionPercentage is the rounded share of the course's units
// present in the completed set. Ids that no longer match a catalog
// unit are ignored; a course with no videos reads as 0.
func CompletionPercentage(course *models.Course, progress models.ProgressRecord) int {
	if len(course.Videos) == 0 {
		return 0
	}
	done := 0
	for i := range course.Videos {
		if progress.CompletedVideoIDs.Contains(course.Videos[i].VideoID) {
			done++
		}
	}
	return int(math.Round(100 * float64(done) / float64(len(course.Videos))))
}
