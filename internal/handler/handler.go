// Package handler contains the HTTP route handlers. Expected failures are
// mapped from service sentinels to specific statuses; anything unexpected is
// logged server-side and surfaces as a generic 500.
package handler

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/middleware"
	"github.com/localore/localore-backend/internal/service"
	"github.com/localore/localore-backend/pkg/logger"
)

var statusByErr = map[error]int{
	common.ErrInvalidInput:       http.StatusBadRequest,
	common.ErrSelfTarget:         http.StatusBadRequest,
	common.ErrReasonTooShort:     http.StatusBadRequest,
	common.ErrInvalidRole:        http.StatusBadRequest,
	common.ErrInvalidCategory:    http.StatusBadRequest,
	common.ErrUnauthorized:       http.StatusUnauthorized,
	common.ErrInvalidCredentials: http.StatusUnauthorized,
	common.ErrForbidden:          http.StatusForbidden,
	common.ErrAccountSuspended:   http.StatusForbidden,
	common.ErrAccountMuted:       http.StatusForbidden,
	common.ErrTargetIsAdmin:      http.StatusForbidden,
	common.ErrNotFound:           http.StatusNotFound,
	common.ErrUserNotFound:       http.StatusNotFound,
	common.ErrStoryNotFound:      http.StatusNotFound,
	common.ErrRevisionNotFound:   http.StatusNotFound,
	common.ErrCommentNotFound:    http.StatusNotFound,
	common.ErrDisputeNotFound:    http.StatusNotFound,
	common.ErrTargetNotFound:     http.StatusNotFound,
	common.ErrEmailTaken:         http.StatusConflict,
	common.ErrUsernameTaken:      http.StatusConflict,
	common.ErrSlugTaken:          http.StatusConflict,
	common.ErrAlreadyBanned:      http.StatusConflict,
	common.ErrBannedFirst:        http.StatusConflict,
	common.ErrDuplicateDispute:   http.StatusConflict,
	common.ErrInvalidTransition:  http.StatusConflict,
}

var messageByErr = map[error]string{
	common.ErrEmailTaken:         "Email already in use.",
	common.ErrUsernameTaken:      "Username already in use.",
	common.ErrInvalidCredentials: "Invalid username or password.",
}

// respondError converts a service error to an HTTP response
func respondError(c *gin.Context, route string, err error) {
	for sentinel, status := range statusByErr {
		if errors.Is(err, sentinel) {
			msg := sentinel.Error()
			if override, ok := messageByErr[sentinel]; ok {
				msg = override
			}
			if errors.Is(err, common.ErrAccountSuspended) {
				common.Suspended(c)
				return
			}
			common.Error(c, status, msg)
			return
		}
	}

	log := logger.WithRequestID(middleware.RequestID(c))
	log.Error().Err(err).
		Str("route", route).
		Msg("unhandled error")
	common.Error(c, http.StatusInternalServerError, "Something went wrong.")
}

// actionContext pulls request metadata for audit entries
func actionContext(c *gin.Context) service.ActionContext {
	return service.ActionContext{
		ClientIP:  c.ClientIP(),
		RequestID: middleware.RequestID(c),
	}
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// RegisterValidators installs custom binding validators. Call once at startup.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRe.MatchString(fl.Field().String())
		})
	}
}
