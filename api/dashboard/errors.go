package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	coredash "github.com/kilianp07/bikedash/core/dashboard"
	"github.com/kilianp07/bikedash/core/filter"
	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/infra/chart"
)

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	var rangeErr *filter.InvalidRangeError
	var paramErr *coredash.ParamError
	switch {
	case errors.As(err, &rangeErr), errors.As(err, &paramErr):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnknownGroup), errors.Is(err, chart.ErrUnknownChart):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) int {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
	return status
}
