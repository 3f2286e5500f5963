package engine

import (
	"context"
	"sync"
	"time"

	"campus/backend/models"
	"campus/backend/store"

	"github.com/google/uuid"
)

// Step is the position of an enrollment flow. Success is terminal;
// error returns to confirmation only through an explicit retry.
type Step string

const (
	StepConfirmation Step = "confirmation"
	StepDetails      Step = "details"
	StepPayment      Step = "payment"
	StepProcessing   Step = "processing"
	StepSuccess      Step = "success"
	StepError        Step = "error"
)

// Per-video purchase states, a smaller machine with the same shape.
type PurchaseState string

const (
	PurchaseNone      PurchaseState = "not_purchased"
	PurchasePaying    PurchaseState = "payment"
	PurchasePurchased PurchaseState = "purchased"
)

type flowKey struct {
	userID   uint
	courseID uint
}

type purchaseKey struct {
	userID   uint
	courseID uint
	videoID  int
}

// EnrollmentMachine drives the multi-step enroll and per-video
// purchase flows. Transient step state lives in memory; durable state
// is written only on successful settlement, enrollment and fresh
// progress together or not at all. At most one flow per (user, course)
// may be processing at a time; duplicate intents are rejected, never
// queued.
type EnrollmentMachine struct {
	Store   store.Store
	Gateway Gateway

	mu        sync.Mutex
	flows     map[flowKey]Step
	purchases map[purchaseKey]PurchaseState
}

func NewEnrollmentMachine(st store.Store, gateway Gateway) *EnrollmentMachine {
	return &EnrollmentMachine{
		Store:     st,
		Gateway:   gateway,
		flows:     make(map[flowKey]Step),
		purchases: make(map[purchaseKey]PurchaseState),
	}
}

// Step reports the current flow step, or false when no flow is open.
func (m *EnrollmentMachine) Step(userID, courseID uint) (Step, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	step, ok := m.flows[flowKey{userID, courseID}]
	return step, ok
}

// Begin opens an enrollment flow at the confirmation step. Reopening
// an existing flow returns its current step unchanged.
func (m *EnrollmentMachine) Begin(userID uint, course *models.Course) (Step, error) {
	enrollment, err := m.Store.Enrollment(userID, course.ID)
	if err != nil {
		return "", err
	}
	if enrollment.Enrolled {
		return "", ErrAlreadyEnrolled
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := flowKey{userID, course.ID}
	if step, ok := m.flows[key]; ok {
		if step == StepProcessing {
			return step, ErrFlowActive
		}
		return step, nil
	}
	m.flows[key] = StepConfirmation
	return StepConfirmation, nil
}

// Confirm moves confirmation -> details.
func (m *EnrollmentMachine) Confirm(userID, courseID uint) (Step, error) {
	return m.advance(flowKey{userID, courseID}, StepConfirmation, StepDetails)
}

// SubmitDetails leaves the details step. Paid courses move on to
// payment; free courses skip it and settle immediately.
func (m *EnrollmentMachine) SubmitDetails(ctx context.Context, userID uint, course *models.Course) (Step, error) {
	if !course.IsFree {
		return m.advance(flowKey{userID, course.ID}, StepDetails, StepPayment)
	}
	if _, err := m.advance(flowKey{userID, course.ID}, StepDetails, StepProcessing); err != nil {
		return m.currentStep(flowKey{userID, course.ID}), err
	}
	return m.settle(ctx, userID, course, 0)
}

// Pay authorizes the payment and, when the provider accepts it, runs
// settlement. The method details pass through to the gateway opaquely.
func (m *EnrollmentMachine) Pay(ctx context.Context, userID uint, course *models.Course, method PaymentMethod) (Step, error) {
	key := flowKey{userID, course.ID}
	if _, err := m.advance(key, StepPayment, StepProcessing); err != nil {
		return m.currentStep(key), err
	}
	if err := m.Gateway.Authorize(ctx, course.Price, method); err != nil {
		m.park(key, StepError)
		m.recordTx(userID, course.ID, 0, models.PaymentKindEnrollment, course.Price, models.PaymentFailed)
		return StepError, ErrSettlementFailed
	}
	return m.settle(ctx, userID, course, course.Price)
}

// settle runs the processing phase to its terminal step. The flow is
// already parked at processing, so duplicate intents bounce off until
// a terminal step is reached.
func (m *EnrollmentMachine) settle(ctx context.Context, userID uint, course *models.Course, amount int) (Step, error) {
	key := flowKey{userID, course.ID}
	txID := uuid.NewString()
	m.recordTx(userID, course.ID, 0, models.PaymentKindEnrollment, amount, models.PaymentPending)

	if err := m.Gateway.Settle(ctx, txID); err != nil {
		m.park(key, StepError)
		m.recordTx(userID, course.ID, 0, models.PaymentKindEnrollment, amount, models.PaymentFailed)
		return StepError, ErrSettlementFailed
	}
	// Enrollment and the fresh progress record land in one
	// transaction; a commit failure surfaces like a failed
	// settlement with nothing partial observable.
	if err := m.Store.CommitEnrollment(userID, course.ID, time.Now()); err != nil {
		m.park(key, StepError)
		m.recordTx(userID, course.ID, 0, models.PaymentKindEnrollment, amount, models.PaymentFailed)
		return StepError, ErrSettlementFailed
	}
	m.recordTx(userID, course.ID, 0, models.PaymentKindEnrollment, amount, models.PaymentSettled)
	m.park(key, StepSuccess)
	return StepSuccess, nil
}

// Retry resets a failed flow back to confirmation. Only valid from
// the error step and only on explicit user action.
func (m *EnrollmentMachine) Retry(userID, courseID uint) (Step, error) {
	return m.advance(flowKey{userID, courseID}, StepError, StepConfirmation)
}

// Abort discards a flow that has not begun processing. Once
// processing starts the flow runs to success or error.
func (m *EnrollmentMachine) Abort(userID, courseID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := flowKey{userID, courseID}
	step, ok := m.flows[key]
	if !ok {
		return nil
	}
	if step == StepProcessing {
		return ErrFlowActive
	}
	delete(m.flows, key)
	return nil
}

// PurchaseStateFor reports where a standalone video purchase stands.
func (m *EnrollmentMachine) PurchaseStateFor(userID uint, courseID uint, videoID int) (PurchaseState, error) {
	enrollment, err := m.Store.Enrollment(userID, courseID)
	if err != nil {
		return PurchaseNone, err
	}
	if enrollment.PurchasedVideoIDs.Contains(videoID) {
		return PurchasePurchased, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.purchases[purchaseKey{userID, courseID, videoID}]; ok {
		return state, nil
	}
	return PurchaseNone, nil
}

// BuyVideo runs the single-unit purchase machine: not_purchased ->
// payment -> purchased. It adds the unit to purchasedVideoIds and
// never touches the enrolled flag. Buying a unit that is free, owned
// or covered by enrollment is an idempotent no-op.
func (m *EnrollmentMachine) BuyVideo(ctx context.Context, userID uint, course *models.Course, videoID int, method PaymentMethod) error {
	unit := course.VideoByID(videoID)
	if unit == nil {
		return ErrUnknownUnit
	}
	enrollment, err := m.Store.Enrollment(userID, course.ID)
	if err != nil {
		return err
	}
	if enrollment.Enrolled || unit.IsFree || enrollment.PurchasedVideoIDs.Contains(videoID) {
		return nil
	}

	key := purchaseKey{userID, course.ID, videoID}
	m.mu.Lock()
	if m.purchases[key] == PurchasePaying {
		m.mu.Unlock()
		return ErrFlowActive
	}
	m.purchases[key] = PurchasePaying
	m.mu.Unlock()

	finish := func(state PurchaseState) {
		m.mu.Lock()
		if state == PurchaseNone {
			delete(m.purchases, key)
		} else {
			m.purchases[key] = state
		}
		m.mu.Unlock()
	}

	txID := uuid.NewString()
	if err := m.Gateway.Authorize(ctx, unit.Price, method); err != nil {
		finish(PurchaseNone)
		m.recordTx(userID, course.ID, videoID, models.PaymentKindVideo, unit.Price, models.PaymentFailed)
		return ErrSettlementFailed
	}
	m.recordTx(userID, course.ID, videoID, models.PaymentKindVideo, unit.Price, models.PaymentPending)
	if err := m.Gateway.Settle(ctx, txID); err != nil {
		finish(PurchaseNone)
		m.recordTx(userID, course.ID, videoID, models.PaymentKindVideo, unit.Price, models.PaymentFailed)
		return ErrSettlementFailed
	}
	if err := m.Store.AddPurchasedVideo(userID, course.ID, videoID); err != nil {
		finish(PurchaseNone)
		m.recordTx(userID, course.ID, videoID, models.PaymentKindVideo, unit.Price, models.PaymentFailed)
		return ErrSettlementFailed
	}
	m.recordTx(userID, course.ID, videoID, models.PaymentKindVideo, unit.Price, models.PaymentSettled)
	finish(PurchasePurchased)
	return nil
}

func (m *EnrollmentMachine) advance(key flowKey, from, to Step) (Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	step, ok := m.flows[key]
	if !ok {
		return "", ErrInvalidTransition
	}
	if step == StepProcessing {
		return step, ErrFlowActive
	}
	if step != from {
		return step, ErrInvalidTransition
	}
	m.flows[key] = to
	return to, nil
}

func (m *EnrollmentMachine) park(key flowKey, step Step) {
	m.mu.Lock()
	m.flows[key] = step
	m.mu.Unlock()
}

func (m *EnrollmentMachine) currentStep(key flowKey) Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flows[key]
}

// recordTx appends to the payment audit trail. Best effort: a failed
// audit write never blocks the flow itself.
func (m *EnrollmentMachine) recordTx(userID, courseID uint, videoID int, kind string, amount int, status string) {
	tx := models.PaymentTransaction{
		TxID:     uuid.NewString(),
		UserID:   userID,
		CourseID: courseID,
		VideoID:  videoID,
		Kind:     kind,
		Amount:   amount,
		Status:   status,
	}
	_ = m.Store.SaveTransaction(&tx)
}
