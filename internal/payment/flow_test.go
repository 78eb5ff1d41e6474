package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/hearth/internal/log"
	"github.com/mattjoyce/hearth/internal/payment"
	"github.com/mattjoyce/hearth/internal/payment/mocks"
	"github.com/mattjoyce/hearth/internal/state"
)

var checkout = payment.Checkout{AmountCents: 4900, Currency: "EUR", Title: "Pro plan"}

func newProfile(t *testing.T) *payment.ProfileStore {
	t.Helper()
	return payment.NewProfileStore(context.Background(), state.NewMemory(), payment.Config{Logger: log.Discard()})
}

func TestEntryStep(t *testing.T) {
	profile := newProfile(t)
	gw := payment.NewSimulatedGateway(0)

	f := payment.NewFlow(profile, gw, checkout)
	assert.Equal(t, payment.StepMethodSelection, f.Step())

	m := profile.AddPaymentMethod(payment.MethodCard, "Visa •••• 4242", "12/26", true)
	f = payment.NewFlow(profile, gw, checkout)
	assert.Equal(t, payment.StepProfile, f.Step())

	profile.UpdateMethodStatus(m.ID, payment.StatusExpired)
	f = payment.NewFlow(profile, gw, checkout)
	assert.Equal(t, payment.StepMethodSelection, f.Step())
}

func TestCardRequiresAllFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockGateway(ctrl)
	profile := newProfile(t)
	ctx := context.Background()

	f := payment.NewFlow(profile, gw, checkout)
	require.NoError(t, f.SelectMethod(ctx, payment.MethodCard))
	assert.Equal(t, payment.StepCardDetails, f.Step())

	require.NoError(t, f.SubmitCard(ctx, payment.CardDetails{Number: "4242 4242 4242 4242", Name: "Ada", Expiry: "12 / 28"}))
	assert.Equal(t, payment.StepCardDetails, f.Step())
	assert.Equal(t, payment.MsgMissingFields, f.Message())
	assert.Empty(t, profile.Profile().Methods)
}

func TestCardSuccessSavesDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockGateway(ctrl)
	profile := newProfile(t)
	ctx := context.Background()

	gw.EXPECT().
		Charge(gomock.Any(), payment.ChargeRequest{AmountCents: 4900, Currency: "EUR", Method: payment.MethodCard}).
		Return(payment.ChargeResult{Status: payment.ChargeSuccess, Reference: "ref-1"}, nil)

	var steps []payment.Step
	f := payment.NewFlow(profile, gw, checkout, payment.WithStepListener(func(s payment.Step) { steps = append(steps, s) }))
	require.NoError(t, f.SelectMethod(ctx, payment.MethodCard))
	require.NoError(t, f.SubmitCard(ctx, payment.CardDetails{
		Number: "4242 4242 4242 4242", Name: "Ada", Expiry: "12 / 28", CVC: "123",
	}))

	assert.Equal(t, payment.StepSuccess, f.Step())
	assert.Equal(t, []payment.Step{payment.StepCardDetails, payment.StepProcessing, payment.StepSuccess}, steps)
	def, ok := profile.DefaultMethod()
	require.True(t, ok)
	assert.Equal(t, "Card •••• 4242", def.DisplayName)
	assert.Equal(t, "12/28", def.ExpiryDate)
	assert.Equal(t, payment.VariantActive, profile.Variant())
}

func TestNonCardChargesDirectly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockGateway(ctrl)
	profile := newProfile(t)

	gw.EXPECT().Charge(gomock.Any(), gomock.Any()).
		Return(payment.ChargeResult{Status: payment.ChargeSuccess}, nil)

	f := payment.NewFlow(profile, gw, checkout)
	f.SetSaveMethod(false)
	require.NoError(t, f.SelectMethod(context.Background(), payment.MethodPayPal))
	assert.Equal(t, payment.StepSuccess, f.Step())
	assert.Empty(t, profile.Profile().Methods, "method is not stored when saving is off")
}

func TestDeclinedAndFailedCharges(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockGateway(ctrl)
	profile := newProfile(t)
	ctx := context.Background()

	gomock.InOrder(
		gw.EXPECT().Charge(gomock.Any(), gomock.Any()).
			Return(payment.ChargeResult{Status: payment.ChargeDeclined}, nil),
		gw.EXPECT().Charge(gomock.Any(), gomock.Any()).
			Return(payment.ChargeResult{}, errors.New("connection reset")),
	)

	f := payment.NewFlow(profile, gw, checkout)
	require.NoError(t, f.SelectMethod(ctx, payment.MethodIDEAL))
	assert.Equal(t, payment.StepError, f.Step())
	assert.Equal(t, payment.MsgDeclined, f.Message())

	require.NoError(t, f.BackToMethods())
	require.NoError(t, f.SelectMethod(ctx, payment.MethodBankTransfer))
	assert.Equal(t, payment.StepError, f.Step())
	assert.Equal(t, payment.MsgFailed, f.Message())
	assert.Empty(t, profile.Profile().Methods)
}

func TestPayWithSavedMarksUsed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockGateway(ctrl)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	profile := payment.NewProfileStore(context.Background(), state.NewMemory(), payment.Config{
		Now:    func() time.Time { return now },
		Logger: log.Discard(),
	})
	m := profile.AddPaymentMethod(payment.MethodCard, "Visa •••• 4242", "12/26", true)
	now = now.Add(time.Hour)

	gw.EXPECT().
		Charge(gomock.Any(), payment.ChargeRequest{AmountCents: 4900, Currency: "EUR", Method: payment.MethodCard, MethodID: m.ID}).
		Return(payment.ChargeResult{Status: payment.ChargeSuccess}, nil)

	f := payment.NewFlow(profile, gw, checkout)
	require.NoError(t, f.PayWithSaved(context.Background()))
	assert.Equal(t, payment.StepSuccess, f.Step())

	def, _ := profile.DefaultMethod()
	assert.Equal(t, now, def.LastUsed)
	assert.Len(t, profile.Profile().Methods, 1)
}

func TestRepeatedSubmitChargesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockGateway(ctrl)
	profile := newProfile(t)
	profile.AddPaymentMethod(payment.MethodCard, "Visa •••• 4242", "12/26", true)

	gw.EXPECT().Charge(gomock.Any(), gomock.Any()).
		Return(payment.ChargeResult{Status: payment.ChargeSuccess}, nil).
		Times(1)

	f := payment.NewFlow(profile, gw, checkout)
	errs := make([]error, 16)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.PayWithSaved(context.Background())
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, payment.ErrWrongStep)
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, payment.StepSuccess, f.Step())
}

func TestSubmitWhileProcessingIsRefused(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	gw := mocks.NewMockGateway(ctrl)
	profile := newProfile(t)

	started := make(chan struct{})
	release := make(chan struct{})
	gw.EXPECT().Charge(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, payment.ChargeRequest) (payment.ChargeResult, error) {
			close(started)
			<-release
			return payment.ChargeResult{Status: payment.ChargeSuccess}, nil
		}).
		Times(1)

	ctx := context.Background()
	card := payment.CardDetails{Number: "4242 4242 4242 4242", Name: "Ada", Expiry: "12 / 28", CVC: "123"}
	f := payment.NewFlow(profile, gw, checkout)
	require.NoError(t, f.SelectMethod(ctx, payment.MethodCard))

	done := make(chan error, 1)
	go func() { done <- f.SubmitCard(ctx, card) }()
	<-started

	assert.Equal(t, payment.StepProcessing, f.Step())
	assert.ErrorIs(t, f.SubmitCard(ctx, card), payment.ErrWrongStep)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, payment.StepSuccess, f.Step())
	assert.Len(t, profile.Profile().Methods, 1)
}

func TestWrongStep(t *testing.T) {
	profile := newProfile(t)
	f := payment.NewFlow(profile, payment.NewSimulatedGateway(0), checkout)

	assert.ErrorIs(t, f.PayWithSaved(context.Background()), payment.ErrWrongStep)
	assert.ErrorIs(t, f.SubmitCard(context.Background(), payment.CardDetails{}), payment.ErrWrongStep)
	assert.ErrorIs(t, f.BackToProfile(), payment.ErrWrongStep)
	assert.ErrorIs(t, f.AddNewMethod(), payment.ErrWrongStep)
}

func TestNavigationAndReset(t *testing.T) {
	profile := newProfile(t)
	profile.SeedDemo()
	f := payment.NewFlow(profile, payment.NewSimulatedGateway(0), checkout)

	require.NoError(t, f.AddNewMethod())
	assert.Equal(t, payment.StepMethodSelection, f.Step())
	require.NoError(t, f.BackToProfile())
	assert.Equal(t, payment.StepProfile, f.Step())

	require.NoError(t, f.AddNewMethod())
	require.NoError(t, f.SelectMethod(context.Background(), payment.MethodCard))
	f.SetSaveMethod(false)
	f.Reset()
	assert.Equal(t, payment.StepProfile, f.Step())
	assert.True(t, f.SaveMethod())
}

func TestSimulatedGateway(t *testing.T) {
	gw := payment.NewSimulatedGateway(0)
	res, err := gw.Charge(context.Background(), payment.ChargeRequest{Method: payment.MethodCard})
	require.NoError(t, err)
	assert.Equal(t, payment.ChargeSuccess, res.Status)
	assert.NotEmpty(t, res.Reference)

	slow := payment.NewSimulatedGateway(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err = slow.Charge(ctx, payment.ChargeRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, payment.ChargeError, res.Status)

	assert.Equal(t, payment.DefaultProcessingDelay, payment.NewSimulatedGateway(-1).Delay)
}
