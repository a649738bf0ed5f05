package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/maika/internal/api/shared"
	"github.com/phrazzld/maika/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(ctx context.Context, subject string) (string, error) {
	args := m.Called(ctx, subject)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*auth.Claims)
	return claims, args.Error(1)
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		authHeader     string
		validate       bool
		claims         *auth.Claims
		validateErr    error
		expectedStatus int
		expectedCaller string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer good",
			validate:       true,
			claims:         &auth.Claims{Subject: "rasa", TokenType: auth.TokenTypeWebhook},
			expectedStatus: http.StatusOK,
			expectedCaller: "rasa",
		},
		{
			name:           "lowercase scheme",
			authHeader:     "bearer good",
			validate:       true,
			claims:         &auth.Claims{Subject: "rasa", TokenType: auth.TokenTypeWebhook},
			expectedStatus: http.StatusOK,
			expectedCaller: "rasa",
		},
		{
			name:           "missing header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong scheme",
			authHeader:     "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "no token",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer old",
			validate:       true,
			validateErr:    auth.ErrExpiredToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer bad",
			validate:       true,
			validateErr:    auth.ErrInvalidToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unexpected failure",
			authHeader:     "Bearer boom",
			validate:       true,
			validateErr:    errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tokens := &mockTokenService{}
			if tc.validate {
				tokens.On("ValidateToken", mock.Anything, mock.AnythingOfType("string")).
					Return(tc.claims, tc.validateErr)
			}

			var caller string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				caller, _ = shared.GetCaller(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			if tc.authHeader != "" {
				r.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()

			NewAuthMiddleware(tokens).Authenticate(next).ServeHTTP(w, r)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedCaller, caller)
			tokens.AssertExpectations(t)
		})
	}
}

func TestNewAuthMiddleware_PanicsOnNil(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewAuthMiddleware(nil) })
}
