package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Step is a state of the checkout flow.
type Step string

const (
	StepProfile         Step = "profile"
	StepMethodSelection Step = "method-selection"
	StepCardDetails     Step = "card-details"
	StepProcessing      Step = "processing"
	StepSuccess         Step = "success"
	StepError           Step = "error"
)

const (
	MsgMissingFields = "Please fill in all fields"
	MsgDeclined      = "Payment was declined. Please try another method."
	MsgFailed        = "Payment failed. Please try again."
)

// ErrWrongStep is returned when an action is not available in the current step.
var ErrWrongStep = errors.New("action not available in current step")

// Checkout describes what is being paid for.
type Checkout struct {
	AmountCents int64
	Currency    string
	Title       string
}

// CardDetails is the card form. All fields are required.
type CardDetails struct {
	Number string
	Name   string
	Expiry string
	CVC    string
}

func (c CardDetails) complete() bool {
	for _, f := range []string{c.Number, c.Name, c.Expiry, c.CVC} {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// Flow is one checkout. It starts on the stored profile when a valid default
// method exists and on method selection otherwise.
type Flow struct {
	profile  *ProfileStore
	gateway  Gateway
	checkout Checkout
	logger   *slog.Logger
	onStep   func(Step)

	mu         sync.Mutex
	step       Step
	selected   MethodType
	saveMethod bool
	message    string
	result     ChargeResult
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithStepListener registers fn to be called after every step change.
func WithStepListener(fn func(Step)) FlowOption {
	return func(f *Flow) { f.onStep = fn }
}

// WithLogger sets the flow's logger.
func WithLogger(l *slog.Logger) FlowOption {
	return func(f *Flow) { f.logger = l }
}

// NewFlow starts a checkout against the given profile and gateway.
func NewFlow(profile *ProfileStore, gw Gateway, checkout Checkout, opts ...FlowOption) *Flow {
	f := &Flow{
		profile:    profile,
		gateway:    gw,
		checkout:   checkout,
		logger:     slog.Default(),
		selected:   MethodCard,
		saveMethod: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.step = f.entryStep()
	return f
}

func (f *Flow) entryStep() Step {
	if _, ok := f.profile.DefaultMethod(); ok && f.profile.HasValidProfile() {
		return StepProfile
	}
	return StepMethodSelection
}

// Step returns the current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Message returns the validation or failure message for the current step.
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Selected returns the chosen method type.
func (f *Flow) Selected() MethodType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected
}

// Result returns the last gateway answer.
func (f *Flow) Result() ChargeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// SaveMethod reports whether a new method will be stored on success.
func (f *Flow) SaveMethod() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveMethod
}

// SetSaveMethod toggles storing a new method on success.
func (f *Flow) SetSaveMethod(save bool) {
	f.mu.Lock()
	f.saveMethod = save
	f.mu.Unlock()
}

// AddNewMethod leaves the stored profile for method selection.
func (f *Flow) AddNewMethod() error {
	return f.transition(StepMethodSelection, StepProfile)
}

// BackToProfile returns from method selection to the stored profile when one
// is usable.
func (f *Flow) BackToProfile() error {
	if f.entryStep() != StepProfile {
		return fmt.Errorf("no stored default method: %w", ErrWrongStep)
	}
	return f.transition(StepProfile, StepMethodSelection)
}

// BackToMethods returns from the card form or an error to method selection.
func (f *Flow) BackToMethods() error {
	return f.transition(StepMethodSelection, StepCardDetails, StepError)
}

// SelectMethod chooses a method type. Cards go to the card form; every other
// type is charged straight away.
func (f *Flow) SelectMethod(ctx context.Context, t MethodType) error {
	f.mu.Lock()
	if f.step != StepMethodSelection {
		f.mu.Unlock()
		return ErrWrongStep
	}
	f.selected = t
	f.message = ""
	if t == MethodCard {
		f.step = StepCardDetails
		f.mu.Unlock()
		f.emit(StepCardDetails)
		return nil
	}
	save := f.beginLocked()

	return f.charge(ctx, ChargeRequest{Method: t}, func() {
		if save {
			f.profile.AddPaymentMethod(t, DisplayName(t, ""), "", true)
		}
	})
}

// SubmitCard validates the card form and charges it. An incomplete form
// leaves the flow on the card form with MsgMissingFields.
func (f *Flow) SubmitCard(ctx context.Context, card CardDetails) error {
	f.mu.Lock()
	if f.step != StepCardDetails {
		f.mu.Unlock()
		return ErrWrongStep
	}
	if !card.complete() {
		f.message = MsgMissingFields
		f.mu.Unlock()
		return nil
	}
	save := f.beginLocked()

	return f.charge(ctx, ChargeRequest{Method: MethodCard}, func() {
		if save {
			expiry := strings.ReplaceAll(card.Expiry, " / ", "/")
			f.profile.AddPaymentMethod(MethodCard, DisplayName(MethodCard, card.Number), expiry, true)
		}
	})
}

// PayWithSaved charges the default stored method.
func (f *Flow) PayWithSaved(ctx context.Context) error {
	def, ok := f.profile.DefaultMethod()
	f.mu.Lock()
	if f.step != StepProfile {
		f.mu.Unlock()
		return ErrWrongStep
	}
	if !ok {
		f.mu.Unlock()
		return fmt.Errorf("no default method: %w", ErrWrongStep)
	}
	f.selected = def.Type
	f.beginLocked()

	return f.charge(ctx, ChargeRequest{Method: def.Type, MethodID: def.ID}, func() {
		f.profile.MarkMethodUsed(def.ID)
	})
}

// beginLocked moves to processing in the same critical section as the
// caller's step check, so a repeated submit sees processing and is refused.
// It releases the lock and reports the save toggle at that moment.
func (f *Flow) beginLocked() (save bool) {
	f.step = StepProcessing
	f.message = ""
	save = f.saveMethod
	f.mu.Unlock()
	f.emit(StepProcessing)
	return save
}

// charge calls the gateway and settles the step. The lock is not held
// during the call so Step reports processing.
func (f *Flow) charge(ctx context.Context, req ChargeRequest, onSuccess func()) error {
	req.AmountCents = f.checkout.AmountCents
	req.Currency = f.checkout.Currency

	res, err := f.gateway.Charge(ctx, req)

	f.mu.Lock()
	f.result = res
	switch {
	case err != nil:
		f.step, f.message = StepError, MsgFailed
		f.logger.Warn("payment charge failed", "method", req.Method, "error", err)
	case res.Status == ChargeSuccess:
		f.step = StepSuccess
	case res.Status == ChargeDeclined:
		f.step, f.message = StepError, MsgDeclined
		if res.Message != "" {
			f.message = res.Message
		}
	default:
		f.step, f.message = StepError, MsgFailed
		if res.Message != "" {
			f.message = res.Message
		}
	}
	step := f.step
	f.mu.Unlock()

	if step == StepSuccess {
		onSuccess()
		f.logger.Info("payment succeeded", "method", req.Method, "reference", res.Reference)
	}
	f.emit(step)
	return nil
}

// Reset returns the flow to its entry step with a fresh form.
func (f *Flow) Reset() {
	entry := f.entryStep()
	f.mu.Lock()
	f.step = entry
	f.selected = MethodCard
	f.saveMethod = true
	f.message = ""
	f.result = ChargeResult{}
	f.mu.Unlock()
	f.emit(entry)
}

func (f *Flow) transition(to Step, from ...Step) error {
	f.mu.Lock()
	ok := false
	for _, s := range from {
		if f.step == s {
			ok = true
			break
		}
	}
	if !ok {
		f.mu.Unlock()
		return ErrWrongStep
	}
	f.step = to
	f.message = ""
	f.mu.Unlock()
	f.emit(to)
	return nil
}

func (f *Flow) emit(s Step) {
	if f.onStep != nil {
		f.onStep(s)
	}
}
