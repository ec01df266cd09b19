package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"cardapio/internal/pricing"
	"cardapio/internal/repository"
	"cardapio/internal/service"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		zap.L().Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	fields := []zap.Field{
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("error", message),
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("returning error", fields...)
	} else {
		zap.L().Info("returning error", fields...)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{repository.ErrNotFound, http.StatusNotFound},
	{pricing.ErrLineNotFound, http.StatusNotFound},
	{service.ErrEntryUnavailable, http.StatusConflict},
	{service.ErrSessionBusy, http.StatusConflict},
	{pricing.ErrInvalidTransition, http.StatusConflict},
	{pricing.ErrOrderFinalized, http.StatusConflict},
	{pricing.ErrSizeRequired, http.StatusUnprocessableEntity},
	{pricing.ErrUnknownSize, http.StatusUnprocessableEntity},
	{pricing.ErrInvalidCoupon, http.StatusUnprocessableEntity},
	{pricing.ErrEmptyCart, http.StatusUnprocessableEntity},
	{pricing.ErrPaymentRequired, http.StatusUnprocessableEntity},
	{pricing.ErrInvalidQuantity, http.StatusBadRequest},
	{service.ErrStore, http.StatusBadGateway},
	{service.ErrUpload, http.StatusBadGateway},
}

// statusFor maps service and pricing errors to HTTP statuses.
func statusFor(err error) int {
	if service.IsValidation(err) {
		return http.StatusBadRequest
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, route string, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Error("unexpected error", zap.String("route", route), zap.Error(err))
		message = "internal server error"
	}
	respondWithError(c, status, route, message)
}

func respondValidationError(c *gin.Context, route string, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondWithError(c, http.StatusBadRequest, route, "invalid request body")
		return
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s %s", fe.Field(), fe.Tag()))
	}
	respondWithError(c, http.StatusBadRequest, route, "invalid fields: "+strings.Join(fields, ", "))
}

func objectIDParam(c *gin.Context, route, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}
