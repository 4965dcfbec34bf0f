// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/infrastructure/store/memory"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

// permissivePublisher accepts every publish call.
func permissivePublisher() *mocks.MockEventPublisher {
	publisher := &mocks.MockEventPublisher{}
	publisher.On("PublishMeeting", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	publisher.On("PublishParticipant", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	publisher.On("PublishRecording", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return publisher
}

type reconciliationFixture struct {
	service   *ReconciliationService
	zoom      *mocks.MockZoomAPI
	publisher *mocks.MockEventPublisher
	store     *memory.Store
}

// setupServiceForTesting wires a ReconciliationService to an in-memory store,
// a mocked Zoom API and a fixed clock.
func setupServiceForTesting(t *testing.T) *reconciliationFixture {
	t.Helper()
	store := memory.New()
	zoom := &mocks.MockZoomAPI{}
	publisher := permissivePublisher()
	svc := NewReconciliationService(store.Repositories(), zoom, publisher, ServiceConfig{
		RecordingsDir:   t.TempDir(),
		DownloadWorkers: 2,
	})
	svc.now = func() time.Time { return testNow }
	t.Cleanup(func() { zoom.AssertExpectations(t) })
	return &reconciliationFixture{service: svc, zoom: zoom, publisher: publisher, store: store}
}
