// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
)

// MockWebhookValidator implements domain.WebhookValidator for testing
type MockWebhookValidator struct {
	mock.Mock
}

var _ domain.WebhookValidator = (*MockWebhookValidator)(nil)

func (m *MockWebhookValidator) ValidateSignature(body []byte, signature string) error {
	args := m.Called(body, signature)
	return args.Error(0)
}

func (m *MockWebhookValidator) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockWebhookValidator) Sign(data []byte) string {
	args := m.Called(data)
	return args.String(0)
}
