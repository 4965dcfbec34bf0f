// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain"
	"github.com/linuxfoundation/lfx-v2-zoom-tracker/internal/domain/models"
)

// MockTokenRepository implements domain.TokenRepository for testing
type MockTokenRepository struct {
	mock.Mock
}

var _ domain.TokenRepository = (*MockTokenRepository)(nil)

func (m *MockTokenRepository) LatestToken(ctx context.Context) (*models.OAuthToken, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OAuthToken), args.Error(1)
}

func (m *MockTokenRepository) CreateToken(ctx context.Context, token *models.OAuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) UpdateToken(ctx context.Context, token *models.OAuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteAllTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
