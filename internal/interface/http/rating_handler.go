package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/palitra-app/palitra/internal/application"
	"github.com/palitra-app/palitra/pkg/response"
	"github.com/palitra-app/palitra/pkg/validation"
)

// RatingHandler serves the jury endpoints.
type RatingHandler struct {
	Svc    *app.RatingService
	Logger *logrus.Logger
}

func NewRatingHandler(svc *app.RatingService, logger *logrus.Logger) *RatingHandler {
	return &RatingHandler{Svc: svc, Logger: logger}
}

type rateRequest struct {
	ArtworkID string `json:"artwork_id" binding:"required,uuid"`
	Rating    int    `json:"rating" binding:"required,gte=1,lte=10"`
}

// Rate POST /api/ratings (jury only)
func (h *RatingHandler) Rate(c *gin.Context) {
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	created, err := h.Svc.Rate(c.Request.Context(), c.GetString("userID"), req.ArtworkID, req.Rating)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidScore):
			response.Error[any](c, http.StatusBadRequest, "rating must be between 1 and 10", nil)
		case errors.Is(err, app.ErrArtworkNotFound):
			response.Error[any](c, http.StatusNotFound, "artwork not found", nil)
		case errors.Is(err, app.ErrRatingWindowClosed):
			response.Error[any](c, http.StatusForbidden, "judging window is closed", nil)
		default:
			h.Logger.WithError(err).Error("rating failed")
			response.Error[any](c, http.StatusInternalServerError, "rating failed", nil)
		}
		return
	}
	status := http.StatusOK
	msg := "rating updated"
	if created {
		status = http.StatusCreated
		msg = "rating recorded"
	}
	response.Success[any](c, status, gin.H{"artwork_id": req.ArtworkID, "rating": req.Rating}, msg, nil)
}

// Summary GET /api/artworks/:id/rating (jury only)
func (h *RatingHandler) Summary(c *gin.Context) {
	sum, err := h.Svc.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrArtworkNotFound) {
			response.Error[any](c, http.StatusNotFound, "artwork not found", nil)
			return
		}
		h.Logger.WithError(err).Error("rating summary failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load rating summary", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{
		"artwork_id": sum.ArtworkID,
		"average":    sum.Average,
		"count":      sum.Count,
	}, "rating summary", nil)
}
