package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/skilltrack/internal/app/models/dto"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

func codes(resp *dto.Response) []enums.ResultCode {
	var out []enums.ResultCode
	for _, m := range resp.Messages() {
		out = append(out, m.Code)
	}
	return out
}

func TestErrorResponse_Kinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		codes  []enums.ResultCode
	}{
		{"missing field", fieldError("id", "id is required", ValidationMissing), http.StatusBadRequest, []enums.ResultCode{enums.CodeMissingParameter}},
		{"invalid field", apperrors.NewValidationError("max", "too big"), http.StatusBadRequest, []enums.ResultCode{enums.CodeInvalidField}},
		{"malformed body", fieldError("", "request body must be a JSON object", ValidationInvalid), http.StatusBadRequest, []enums.ResultCode{enums.CodeValidation}},
		{"bad credentials", apperrors.NewAuthenticationError(apperrors.ErrInvalidCredentials), http.StatusUnauthorized, []enums.ResultCode{enums.CodeInvalidCredentials}},
		{"not permitted", apperrors.NewAuthorizationError(apperrors.ErrNotYourClass), http.StatusForbidden, []enums.ResultCode{enums.CodeNotPermitted}},
		{"business rule", apperrors.NewBusinessRuleError(apperrors.ErrClassFull), http.StatusConflict, []enums.ResultCode{enums.CodeBusinessRule}},
		{"not found", apperrors.NewNotFoundError(apperrors.ErrClassNotFound), http.StatusNotFound, []enums.ResultCode{enums.CodeNotFound}},
		{"wrapped", fmt.Errorf("join: %w", apperrors.NewBusinessRuleError(apperrors.ErrClassFull)), http.StatusConflict, []enums.ResultCode{enums.CodeBusinessRule}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, status := ErrorResponse(context.Background(), tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.codes, codes(resp))
			_, redirected := resp.RedirectTarget()
			assert.False(t, redirected)
		})
	}
}

func TestErrorResponse_SessionInvalidRedirectsToLogin(t *testing.T) {
	resp, status := ErrorResponse(context.Background(), apperrors.NewAuthenticationError(apperrors.ErrSessionInvalid))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, []enums.ResultCode{enums.CodeAuthRequired}, codes(resp))

	where, ok := resp.RedirectTarget()
	require.True(t, ok)
	assert.Equal(t, LoginPage, where)
}

func TestErrorResponse_JoinedErrorsYieldOneMessageEach(t *testing.T) {
	err := errors.Join(
		apperrors.NewBusinessRuleError(apperrors.ErrClassFull),
		apperrors.NewBusinessRuleError(apperrors.ErrPreviouslyRemoved),
		apperrors.NewBusinessRuleError(apperrors.ErrSkillAlreadyHeld),
	)

	resp, status := ErrorResponse(context.Background(), err)
	assert.Equal(t, http.StatusConflict, status)
	require.Len(t, resp.Messages(), 3)
	assert.Equal(t, apperrors.ErrClassFull.Error(), resp.Messages()[0].Text)
	assert.Equal(t, apperrors.ErrPreviouslyRemoved.Error(), resp.Messages()[1].Text)
	assert.Equal(t, apperrors.ErrSkillAlreadyHeld.Error(), resp.Messages()[2].Text)
}

func TestErrorResponse_InternalErrorsAreGeneric(t *testing.T) {
	err := errors.Join(
		apperrors.NewBusinessRuleError(apperrors.ErrClassFull),
		errors.New("connection reset by peer"),
	)

	resp, status := ErrorResponse(context.Background(), err)
	assert.Equal(t, http.StatusInternalServerError, status)
	require.Len(t, resp.Messages(), 1)
	assert.Equal(t, enums.CodeInternal, resp.Messages()[0].Code)

	body, jerr := json.Marshal(resp)
	require.NoError(t, jerr)
	assert.NotContains(t, string(body), "connection reset")
}
