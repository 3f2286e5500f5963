package engine_test

import (
	"testing"

	"campus/backend/engine"
	"campus/backend/models"
	"campus/backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	events []int
}

func (n *recordingNotifier) UnitCompleted(userID uint, course *models.Course, videoID int) {
	n.events = append(n.events, videoID)
}

func seedCourse(t *testing.T, st *store.MemoryStore, course *models.Course) *models.Course {
	t.Helper()
	require.NoError(t, st.CreateCourse(course))
	seeded, err := st.CourseByID(course.ID)
	require.NoError(t, err)
	return seeded
}

func fourVideoCourse() *models.Course {
	return &models.Course{
		Title:  "Algorithms",
		IsFree: true,
		Videos: []models.VideoUnit{
			{VideoID: 1, IsFree: true, SequenceOrder: 1},
			{VideoID: 2, IsFree: true, SequenceOrder: 2},
			{VideoID: 3, IsFree: true, SequenceOrder: 3},
			{VideoID: 4, IsFree: true, SequenceOrder: 4},
		},
	}
}

func TestRecordWatchMarksCompletionOnce(t *testing.T) {
	st := store.NewMemoryStore()
	notifier := &recordingNotifier{}
	tracker := engine.NewProgressTracker(st, notifier, 0.9)
	course := seedCourse(t, st, fourVideoCourse())

	// Below the threshold: watched but not completed.
	progress, err := tracker.RecordWatch(7, course, 1, 0.5)
	require.NoError(t, err)
	assert.Empty(t, progress.CompletedVideoIDs)
	require.NotNil(t, progress.LastWatchedVideoID)
	assert.Equal(t, 1, *progress.LastWatchedVideoID)

	// Crossing the threshold completes the unit and notifies once.
	progress, err = tracker.RecordWatch(7, course, 1, 0.95)
	require.NoError(t, err)
	assert.Equal(t, models.IDList{1}, progress.CompletedVideoIDs)
	assert.Equal(t, []int{1}, notifier.events)

	// Replaying past the threshold is a no-op for completion and
	// fires no further notification.
	for i := 0; i < 3; i++ {
		progress, err = tracker.RecordWatch(7, course, 1, 1.0)
		require.NoError(t, err)
	}
	assert.Equal(t, models.IDList{1}, progress.CompletedVideoIDs)
	assert.Equal(t, []int{1}, notifier.events)
	assert.LessOrEqual(t, engine.CompletionPercentage(course, progress), 100)
}

func TestCompletionPercentage(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := engine.NewProgressTracker(st, nil, 0.9)
	course := seedCourse(t, st, fourVideoCourse())

	progress, err := tracker.RecordWatch(7, course, 1, 0.92)
	require.NoError(t, err)
	assert.Equal(t, 25, engine.CompletionPercentage(course, progress))

	progress, err = tracker.RecordWatch(7, course, 2, 0.92)
	require.NoError(t, err)
	assert.Equal(t, 50, engine.CompletionPercentage(course, progress))
}

func TestCompletionPercentageEmptyCourse(t *testing.T) {
	course := &models.Course{Title: "Empty"}
	assert.Equal(t, 0, engine.CompletionPercentage(course, models.ProgressRecord{}))
	assert.Nil(t, engine.NextUnit(course, models.ProgressRecord{}))
}

func TestNextUnitOrderAndRewatch(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := engine.NewProgressTracker(st, nil, 0.9)
	course := seedCourse(t, st, fourVideoCourse())

	progress, err := st.Progress(7, course.ID)
	require.NoError(t, err)
	next := engine.NextUnit(course, progress)
	require.NotNil(t, next)
	assert.Equal(t, 1, next.VideoID)

	// Completing 1 and 3 leaves 2 as the first incomplete unit.
	_, err = tracker.RecordWatch(7, course, 1, 1.0)
	require.NoError(t, err)
	progress, err = tracker.RecordWatch(7, course, 3, 1.0)
	require.NoError(t, err)
	next = engine.NextUnit(course, progress)
	require.NotNil(t, next)
	assert.Equal(t, 2, next.VideoID)

	// Everything complete wraps to the first unit for rewatching.
	_, err = tracker.RecordWatch(7, course, 2, 1.0)
	require.NoError(t, err)
	progress, err = tracker.RecordWatch(7, course, 4, 1.0)
	require.NoError(t, err)
	next = engine.NextUnit(course, progress)
	require.NotNil(t, next)
	assert.Equal(t, 1, next.VideoID)
}

func TestRecordWatchDefendsAccess(t *testing.T) {
	st := store.NewMemoryStore()
	tracker := engine.NewProgressTracker(st, nil, 0.9)
	course := seedCourse(t, st, paidCourse())

	// Paid unit without enrollment or purchase.
	_, err := tracker.RecordWatch(7, course, 2, 0.95)
	assert.ErrorIs(t, err, engine.ErrAccessDenied)

	// Unknown unit fails closed.
	_, err = tracker.RecordWatch(7, course, 99, 0.95)
	assert.ErrorIs(t, err, engine.ErrUnknownUnit)

	// Nothing was persisted by the rejected samples.
	progress, err := st.Progress(7, course.ID)
	require.NoError(t, err)
	assert.Empty(t, progress.CompletedVideoIDs)
	assert.Nil(t, progress.LastWatchedVideoID)
}
