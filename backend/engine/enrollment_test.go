package engine_test

import (
	"context"
	"testing"
	"time"

	"campus/backend/engine"
	"campus/backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway scripts settlement outcomes. When block is set, Settle
// parks until the channel is closed, holding the flow in processing.
type fakeGateway struct {
	authorizeErr error
	settleErr    error
	settling     chan struct{}
	block        chan struct{}
}

func (g *fakeGateway) Authorize(ctx context.Context, amount int, method engine.PaymentMethod) error {
	return g.authorizeErr
}

func (g *fakeGateway) Settle(ctx context.Context, txID string) error {
	if g.settling != nil {
		g.settling <- struct{}{}
	}
	if g.block != nil {
		<-g.block
	}
	return g.settleErr
}

func method() engine.PaymentMethod {
	return engine.PaymentMethod{Kind: "card", Token: "tok_visa", Holder: "A. Learner"}
}

func TestPaidEnrollmentFlow(t *testing.T) {
	st := store.NewMemoryStore()
	gateway := &fakeGateway{}
	machine := engine.NewEnrollmentMachine(st, gateway)
	course := seedCourse(t, st, paidCourse())
	ctx := context.Background()

	step, err := machine.Begin(7, course)
	require.NoError(t, err)
	assert.Equal(t, engine.StepConfirmation, step)

	step, err = machine.Confirm(7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.StepDetails, step)

	step, err = machine.SubmitDetails(ctx, 7, course)
	require.NoError(t, err)
	assert.Equal(t, engine.StepPayment, step)

	step, err = machine.Pay(ctx, 7, course, method())
	require.NoError(t, err)
	assert.Equal(t, engine.StepSuccess, step)

	enrollment, err := st.Enrollment(7, course.ID)
	require.NoError(t, err)
	assert.True(t, enrollment.Enrolled)
	require.NotNil(t, enrollment.EnrolledAt)

	has, err := st.HasProgress(7, course.ID)
	require.NoError(t, err)
	assert.True(t, has)

	progress, err := st.Progress(7, course.ID)
	require.NoError(t, err)
	assert.Empty(t, progress.CompletedVideoIDs)
}

func TestFreeEnrollmentSkipsPayment(t *testing.T) {
	st := store.NewMemoryStore()
	machine := engine.NewEnrollmentMachine(st, &fakeGateway{})
	course := seedCourse(t, st, fourVideoCourse())
	ctx := context.Background()

	_, err := machine.Begin(7, course)
	require.NoError(t, err)
	_, err = machine.Confirm(7, course.ID)
	require.NoError(t, err)

	step, err := machine.SubmitDetails(ctx, 7, course)
	require.NoError(t, err)
	assert.Equal(t, engine.StepSuccess, step)

	enrollment, err := st.Enrollment(7, course.ID)
	require.NoError(t, err)
	assert.True(t, enrollment.Enrolled)
}

func TestSettlementFailureCommitsNothing(t *testing.T) {
	st := store.NewMemoryStore()
	gateway := &fakeGateway{settleErr: engine.ErrSettlementFailed}
	machine := engine.NewEnrollmentMachine(st, gateway)
	course := seedCourse(t, st, paidCourse())
	ctx := context.Background()

	_, err := machine.Begin(7, course)
	require.NoError(t, err)
	_, err = machine.Confirm(7, course.ID)
	require.NoError(t, err)
	_, err = machine.SubmitDetails(ctx, 7, course)
	require.NoError(t, err)

	step, err := machine.Pay(ctx, 7, course, method())
	assert.ErrorIs(t, err, engine.ErrSettlementFailed)
	assert.Equal(t, engine.StepError, step)

	// No partial state: not enrolled, no progress record.
	enrollment, err := st.Enrollment(7, course.ID)
	require.NoError(t, err)
	assert.False(t, enrollment.Enrolled)
	has, err := st.HasProgress(7, course.ID)
	require.NoError(t, err)
	assert.False(t, has)

	// Explicit retry resets to confirmation; a working gateway then
	// commits enrollment and progress together.
	gateway.settleErr = nil
	step, err = machine.Retry(7, course.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.StepConfirmation, step)

	_, err = machine.Confirm(7, course.ID)
	require.NoError(t, err)
	_, err = machine.SubmitDetails(ctx, 7, course)
	require.NoError(t, err)
	step, err = machine.Pay(ctx, 7, course, method())
	require.NoError(t, err)
	assert.Equal(t, engine.StepSuccess, step)

	enrollment, err = st.Enrollment(7, course.ID)
	require.NoError(t, err)
	assert.True(t, enrollment.Enrolled)
	has, err = st.HasProgress(7, course.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestDuplicateIntentWhileProcessing(t *testing.T) {
	st := store.NewMemoryStore()
	gateway := &fakeGateway{
		settling: make(chan struct{}),
		block:    make(chan struct{}),
	}
	machine := engine.NewEnrollmentMachine(st, gateway)
	course := seedCourse(t, st, paidCourse())
	ctx := context.Background()

	_, err := machine.Begin(7, course)
	require.NoError(t, err)
	_, err = machine.Confirm(7, course.ID)
	require.NoError(t, err)
	_, err = machine.SubmitDetails(ctx, 7, course)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := machine.Pay(ctx, 7, course, method())
		done <- err
	}()

	// Wait until the flow is parked in processing.
	<-gateway.settling

	_, err = machine.Begin(7, course)
	assert.ErrorIs(t, err, engine.ErrFlowActive)
	_, err = machine.Pay(ctx, 7, course, method())
	assert.ErrorIs(t, err, engine.ErrFlowActive)
	err = machine.Abort(7, course.ID)
	assert.ErrorIs(t, err, engine.ErrFlowActive)

	close(gateway.block)
	require.NoError(t, <-done)

	step, ok := machine.Step(7, course.ID)
	assert.True(t, ok)
	assert.Equal(t, engine.StepSuccess, step)
}

func TestAbortBeforeProcessingDiscardsFlow(t *testing.T) {
	st := store.NewMemoryStore()
	machine := engine.NewEnrollmentMachine(st, &fakeGateway{})
	course := seedCourse(t, st, paidCourse())

	_, err := machine.Begin(7, course)
	require.NoError(t, err)
	_, err = machine.Confirm(7, course.ID)
	require.NoError(t, err)

	require.NoError(t, machine.Abort(7, course.ID))
	_, ok := machine.Step(7, course.ID)
	assert.False(t, ok)

	// Nothing durable was written.
	enrollment, err := st.Enrollment(7, course.ID)
	require.NoError(t, err)
	assert.False(t, enrollment.Enrolled)
}

func TestOutOfOrderIntentsAreNoOps(t *testing.T) {
	st := store.NewMemoryStore()
	machine := engine.NewEnrollmentMachine(st, &fakeGateway{})
	course := seedCourse(t, st, paidCourse())
	ctx := context.Background()

	// Pay with no flow open.
	_, err := machine.Pay(ctx, 7, course, method())
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	// Pay straight from confirmation.
	_, err = machine.Begin(7, course)
	require.NoError(t, err)
	step, err := machine.Pay(ctx, 7, course, method())
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
	assert.Equal(t, engine.StepConfirmation, step)

	// Retry outside the error step.
	_, err = machine.Retry(7, course.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)
}

func TestBeginWhenAlreadyEnrolled(t *testing.T) {
	st := store.NewMemoryStore()
	machine := engine.NewEnrollmentMachine(st, &fakeGateway{})
	course := seedCourse(t, st, paidCourse())

	require.NoError(t, st.CommitEnrollment(7, course.ID, time.Now()))

	_, err := machine.Begin(7, course)
	assert.ErrorIs(t, err, engine.ErrAlreadyEnrolled)
}

func TestBuyVideo(t *testing.T) {
	st := store.NewMemoryStore()
	gateway := &fakeGateway{}
	machine := engine.NewEnrollmentMachine(st, gateway)
	course := seedCourse(t, st, paidCourse())
	ctx := context.Background()

	require.NoError(t, machine.BuyVideo(ctx, 7, course, 2, method()))

	enrollment, err := st.Enrollment(7, course.ID)
	require.NoError(t, err)
	assert.False(t, enrollment.Enrolled)
	assert.True(t, enrollment.PurchasedVideoIDs.Contains(2))
	assert.True(t, engine.CanAccess(course, 2, enrollment))
	assert.False(t, engine.CanAccess(course, 3, enrollment))

	state, err := machine.PurchaseStateFor(7, course.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, engine.PurchasePurchased, state)

	// Re-buying the same unit is an idempotent no-op.
	require.NoError(t, machine.BuyVideo(ctx, 7, course, 2, method()))

	// Unknown unit fails closed.
	err = machine.BuyVideo(ctx, 7, course, 99, method())
	assert.ErrorIs(t, err, engine.ErrUnknownUnit)
}

func TestBuyVideoSettlementFailure(t *testing.T) {
	st := store.NewMemoryStore()
	gateway := &fakeGateway{settleErr: engine.ErrSettlementFailed}
	machine := engine.NewEnrollmentMachine(st, gateway)
	course := seedCourse(t, st, paidCourse())
	ctx := context.Background()

	err := machine.BuyVideo(ctx, 7, course, 2, method())
	assert.ErrorIs(t, err, engine.ErrSettlementFailed)

	enrollment, err := st.Enrollment(7, course.ID)
	require.NoError(t, err)
	assert.False(t, enrollment.PurchasedVideoIDs.Contains(2))

	// Retry is simply calling again once the gateway recovers.
	gateway.settleErr = nil
	require.NoError(t, machine.BuyVideo(ctx, 7, course, 2, method()))
	enrollment, err = st.Enrollment(7, course.ID)
	require.NoError(t, err)
	assert.True(t, enrollment.PurchasedVideoIDs.Contains(2))
}
