package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dfryer1193/inkfront/blog/application"
	"github.com/dfryer1193/inkfront/shared/contentapi"
)

// statusClientClosedRequest is answered when the browser went away before the content API did.
const statusClientClosedRequest = 499

// respondError turns err into a JSON {"error": ...} notification with a fitting status.
func respondError(c *gin.Context, err error) {
	status, msg := classify(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func classify(err error) (int, string) {
	var apiErr *contentapi.APIError

	switch {
	case errors.Is(err, application.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrInvalidPassphrase):
		return http.StatusUnauthorized, "invalid passphrase"
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "content service timed out"
	case contentapi.IsNotFound(err):
		return http.StatusNotFound, contentapi.Message(err)
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status, apiErr.Message
	case errors.As(err, &apiErr),
		errors.Is(err, contentapi.ErrTransport),
		errors.Is(err, contentapi.ErrMalformed):
		return http.StatusBadGateway, contentapi.Message(err)
	}

	log.Error().Err(err).Msg("Unclassified error")
	return http.StatusInternalServerError, "internal server error"
}
