package engine_test

import (
	"testing"

	"campus/backend/engine"
	"campus/backend/models"

	"github.com/stretchr/testify/assert"
)

func paidCourse() *models.Course {
	return &models.Course{
		Title: "Distributed Systems",
		Price: 2999,
		Videos: []models.VideoUnit{
			{VideoID: 1, Title: "Intro", IsFree: true, SequenceOrder: 1},
			{VideoID: 2, Title: "Consensus", Price: 499, SequenceOrder: 2},
			{VideoID: 3, Title: "Replication", Price: 499, SequenceOrder: 3},
		},
	}
}

func TestFreeUnitsAlwaysAccessible(t *testing.T) {
	course := paidCourse()

	assert.True(t, engine.CanAccess(course, 1, models.EnrollmentRecord{}))
	assert.True(t, engine.CanAccess(course, 1, models.EnrollmentRecord{Enrolled: true}))
	assert.True(t, engine.CanAccess(course, 1, models.EnrollmentRecord{
		PurchasedVideoIDs: models.IDList{2},
	}))
}

func TestEnrollmentGrantsEveryUnit(t *testing.T) {
	course := paidCourse()
	enrollment := models.EnrollmentRecord{Enrolled: true}

	for _, video := range course.Videos {
		assert.True(t, engine.CanAccess(course, video.VideoID, enrollment))
	}
}

func TestPaidUnitRequiresPurchase(t *testing.T) {
	course := paidCourse()

	// Before any purchase: free unit open, paid unit closed.
	assert.True(t, engine.CanAccess(course, 1, models.EnrollmentRecord{}))
	assert.False(t, engine.CanAccess(course, 2, models.EnrollmentRecord{}))

	// After buying only unit 2, unit 2 opens while enrollment stays
	// off and unit 3 stays closed.
	enrollment := models.EnrollmentRecord{PurchasedVideoIDs: models.IDList{2}}
	assert.True(t, engine.CanAccess(course, 2, enrollment))
	assert.False(t, engine.CanAccess(course, 3, enrollment))
	assert.False(t, enrollment.Enrolled)
}

func TestUnknownUnitFailsClosed(t *testing.T) {
	course := paidCourse()

	assert.False(t, engine.CanAccess(course, 99, models.EnrollmentRecord{Enrolled: true}))
	assert.False(t, engine.CanAccess(course, 99, models.EnrollmentRecord{}))
}
