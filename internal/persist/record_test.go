package persist

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/hearth/internal/log"
	"github.com/mattjoyce/hearth/internal/persist/mocks"
	"github.com/mattjoyce/hearth/internal/state"
)

type sample struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestRecordRoundTripThroughMemory(t *testing.T) {
	kv := state.NewMemory()
	rec := NewRecord[[]sample](kv, "samples", log.Discard())

	_, ok := rec.Load(context.Background())
	assert.False(t, ok, "missing record loads as absent")

	rec.Save([]sample{{ID: "a", Count: 1}, {ID: "b", Count: 2}})

	got, ok := rec.Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, []sample{{ID: "a", Count: 1}, {ID: "b", Count: 2}}, got)

	rec.Remove()
	_, ok = rec.Load(context.Background())
	assert.False(t, ok)
}

func TestDecodeRejectsTamperedEnvelope(t *testing.T) {
	raw, err := Encode([]sample{{ID: "a", Count: 1}})
	require.NoError(t, err)

	tampered := []byte(string(raw[:len(raw)-3]) + "9}]}")
	_, err = Decode[[]sample](tampered)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecodeAcceptsBarePayload(t *testing.T) {
	got, err := Decode[[]sample]([]byte(`[{"id":"x","count":3}]`))
	require.NoError(t, err)
	assert.Equal(t, []sample{{ID: "x", Count: 3}}, got)
}

func TestLoadCorruptRecordDegradesToAbsent(t *testing.T) {
	kv := state.NewMemory()
	require.NoError(t, kv.Put(context.Background(), "samples", []byte(`{not json`)))

	rec := NewRecord[[]sample](kv, "samples", log.Discard())
	got, ok := rec.Load(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestRecordSwallowsBackendFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	kv := mocks.NewMockKV(ctrl)
	kv.EXPECT().Get(gomock.Any(), "samples").Return(nil, errors.New("disk on fire"))
	kv.EXPECT().Put(gomock.Any(), "samples", gomock.Any()).Return(errors.New("read-only filesystem"))
	kv.EXPECT().Delete(gomock.Any(), "samples").Return(errors.New("locked"))

	rec := NewRecord[[]sample](kv, "samples", log.Discard())

	_, ok := rec.Load(context.Background())
	assert.False(t, ok)
	assert.NotPanics(t, func() { rec.Save([]sample{{ID: "a"}}) })
	assert.NotPanics(t, rec.Remove)
}
