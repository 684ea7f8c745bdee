package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/yigit/skilltrack/internal/app/models/dto"
	"github.com/yigit/skilltrack/internal/app/models/dto/enums"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

// LoginPage is where unauthenticated callers are sent
const LoginPage = "/login.html"

// ErrorResponse translates err into result items and the HTTP status to send them with. Joined
// errors yield one message per member. Internal errors are logged and reported generically.
func ErrorResponse(ctx context.Context, err error) (*dto.Response, int) {
	resp := dto.NewResponse()
	members := apperrors.Flatten(err)
	status := statusFor(apperrors.KindOf(members[0]))

	for _, e := range members {
		if apperrors.KindOf(e) == apperrors.KindInternal {
			log.Ctx(ctx).Error().Err(err).Msg("Request failed")
			return dto.NewResponse().Message(enums.CodeInternal, "internal error"), http.StatusInternalServerError
		}
	}

	redirect := false
	for _, e := range members {
		var ce *apperrors.CustomError
		errors.As(e, &ce)

		switch ce.Kind {
		case apperrors.KindValidation:
			code := enums.CodeInvalidField
			switch {
			case ce.Code == ValidationMissing:
				code = enums.CodeMissingParameter
			case ce.Field == "":
				code = enums.CodeValidation
			}
			resp.FieldMessage(code, ce.Field, ce.Error())
		case apperrors.KindAuthentication:
			if errors.Is(ce, apperrors.ErrInvalidCredentials) {
				resp.Message(enums.CodeInvalidCredentials, "invalid login name or password")
				continue
			}
			resp.Message(enums.CodeAuthRequired, "please log in")
			redirect = true
		case apperrors.KindAuthorization:
			resp.Message(enums.CodeNotPermitted, ce.Error())
		case apperrors.KindBusinessRule:
			resp.Message(enums.CodeBusinessRule, ce.Error())
		case apperrors.KindNotFound:
			resp.Message(enums.CodeNotFound, ce.Error())
		}
	}
	if redirect {
		resp.Redirect(LoginPage)
	}
	return resp, status
}

// HandleAPIError writes the result items for err and aborts the chain
func HandleAPIError(c *gin.Context, err error) {
	resp, status := ErrorResponse(c.Request.Context(), err)
	c.AbortWithStatusJSON(status, resp)
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindAuthentication:
		return http.StatusUnauthorized
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindBusinessRule:
		return http.StatusConflict
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
