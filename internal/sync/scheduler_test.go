package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radsync/internal/domain"
)

func TestScheduler_StartStop(t *testing.T) {
	store, _ := setupEngineTest(t)
	source := &fakeSource{}
	projector := NewProjector(store, domain.EncodingWISPr, testLogger())
	detector := NewDetector(store, &fakeNotifier{}, 0, testLogger())
	deleter := NewDeleter(store, source, 0, testLogger())

	s := NewScheduler(projector, detector, deleter, source, 0, testLogger())
	require.NoError(t, s.Start(Schedules{
		Vouchers:    "@every 1h",
		Activations: "@every 1h",
	}))
	s.Stop()
}

func TestScheduler_RejectsBadSpec(t *testing.T) {
	store, _ := setupEngineTest(t)
	source := &fakeSource{}
	projector := NewProjector(store, domain.EncodingWISPr, testLogger())
	detector := NewDetector(store, &fakeNotifier{}, 0, testLogger())
	deleter := NewDeleter(store, source, 0, testLogger())

	s := NewScheduler(projector, detector, deleter, source, 0, testLogger())
	err := s.Start(Schedules{Vouchers: "not a cron spec"})
	assert.Error(t, err)
}
