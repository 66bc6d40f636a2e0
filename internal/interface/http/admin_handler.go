package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/palitra-app/palitra/internal/application"
	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/pkg/response"
	"github.com/palitra-app/palitra/pkg/validation"
)

// AdminHandler serves the administrator endpoints: competition and
// nomination management, moderation, user status and winner selection.
type AdminHandler struct {
	Svc    *app.ContestService
	Logger *logrus.Logger
}

func NewAdminHandler(svc *app.ContestService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

type createCompetitionRequest struct {
	Title            string    `json:"title" binding:"required,max=200"`
	Status           string    `json:"status" binding:"omitempty,oneof=draft active archived"`
	StartOfAccepting time.Time `json:"start_of_accepting" binding:"required"`
	EndOfAccepting   time.Time `json:"end_of_accepting" binding:"required"`
	SummingUp        time.Time `json:"summing_up" binding:"required"`
}

type createNominationRequest struct {
	CompetitionID string `json:"competition_id" binding:"required,uuid"`
	Title         string `json:"title" binding:"required,max=200"`
}

type artworkStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=approved rejected"`
}

type userStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active banned inactive"`
}

// CreateCompetition POST /api/admin/competitions
func (h *AdminHandler) CreateCompetition(c *gin.Context) {
	var req createCompetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	comp, err := h.Svc.CreateCompetition(c.Request.Context(), app.CreateCompetitionInput{
		Title:            req.Title,
		Status:           entity.CompetitionStatus(req.Status),
		StartOfAccepting: req.StartOfAccepting,
		EndOfAccepting:   req.EndOfAccepting,
		SummingUp:        req.SummingUp,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidTimeWindow) {
			response.Error[any](c, http.StatusBadRequest, "window must satisfy start <= end <= summing up", nil)
			return
		}
		h.Logger.WithError(err).Error("create competition failed")
		response.Error[any](c, http.StatusInternalServerError, "could not create competition", nil)
		return
	}
	response.Success(c, http.StatusCreated, comp, "competition created", nil)
}

// ListCompetitions GET /api/admin/competitions
func (h *AdminHandler) ListCompetitions(c *gin.Context) {
	comps, err := h.Svc.ListCompetitions(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list competitions failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list competitions", nil)
		return
	}
	response.Success(c, http.StatusOK, comps, "competitions", map[string]any{"count": len(comps)})
}

// CreateNomination POST /api/admin/nominations
func (h *AdminHandler) CreateNomination(c *gin.Context) {
	var req createNominationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	nom, err := h.Svc.CreateNomination(c.Request.Context(), req.CompetitionID, req.Title)
	if err != nil {
		if errors.Is(err, app.ErrCompetitionNotFound) {
			response.Error[any](c, http.StatusNotFound, "competition not found", nil)
			return
		}
		h.Logger.WithError(err).Error("create nomination failed")
		response.Error[any](c, http.StatusInternalServerError, "could not create nomination", nil)
		return
	}
	response.Success(c, http.StatusCreated, nom, "nomination created", nil)
}

// NominationArtworks GET /api/admin/nominations/:id/artworks
func (h *AdminHandler) NominationArtworks(c *gin.Context) {
	arts, err := h.Svc.NominationArtworks(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrNominationNotFound) {
			response.Error[any](c, http.StatusNotFound, "nomination not found", nil)
			return
		}
		h.Logger.WithError(err).Error("list nomination artworks failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list artworks", nil)
		return
	}
	response.Success(c, http.StatusOK, arts, "artworks", map[string]any{"count": len(arts)})
}

// ListArtworks GET /api/admin/artworks?status=...
// The moderation queue is the default view.
func (h *AdminHandler) ListArtworks(c *gin.Context) {
	status := entity.ArtworkStatus(c.DefaultQuery("status", string(entity.ArtworkForModeration)))
	switch status {
	case entity.ArtworkForModeration, entity.ArtworkApproved, entity.ArtworkRejected:
	default:
		response.Error[any](c, http.StatusBadRequest, "invalid status", nil)
		return
	}
	arts, err := h.Svc.ListArtworksByStatus(c.Request.Context(), status)
	if err != nil {
		h.Logger.WithError(err).Error("list artworks failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list artworks", nil)
		return
	}
	response.Success(c, http.StatusOK, arts, "artworks", map[string]any{"count": len(arts)})
}

// SetArtworkStatus PATCH /api/admin/artworks/:id/status {status}
func (h *AdminHandler) SetArtworkStatus(c *gin.Context) {
	var req artworkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	approve := req.Status == string(entity.ArtworkApproved)
	if err := h.Svc.ModerateArtwork(c.Request.Context(), c.Param("id"), approve); err != nil {
		if errors.Is(err, app.ErrArtworkNotFound) {
			response.Error[any](c, http.StatusNotFound, "artwork not found", nil)
			return
		}
		h.Logger.WithError(err).Error("moderation failed")
		response.Error[any](c, http.StatusInternalServerError, "moderation failed", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"artwork_id": c.Param("id"), "status": req.Status}, "artwork "+req.Status, nil)
}

// SetUserStatus PATCH /api/admin/users/:id/status {status}
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req userStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.SetUserStatus(c.Request.Context(), c.Param("id"), entity.UserStatus(req.Status)); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidStatus):
			response.Error[any](c, http.StatusBadRequest, "invalid status", nil)
		case errors.Is(err, app.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		default:
			h.Logger.WithError(err).Error("set user status failed")
			response.Error[any](c, http.StatusInternalServerError, "could not update user status", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"user_id": c.Param("id"), "status": req.Status}, "user status updated", nil)
}

// PickWinner POST /api/admin/nominations/:id/winner
func (h *AdminHandler) PickWinner(c *gin.Context) {
	best, err := h.Svc.PickWinner(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNominationNotFound):
			response.Error[any](c, http.StatusNotFound, "nomination not found", nil)
		case errors.Is(err, app.ErrJudgingStillOpen):
			response.Error[any](c, http.StatusConflict, "judging window is still open", nil)
		case errors.Is(err, app.ErrNothingRated):
			response.Error[any](c, http.StatusConflict, "no rated artworks in this nomination", nil)
		default:
			h.Logger.WithError(err).Error("pick winner failed")
			response.Error[any](c, http.StatusInternalServerError, "could not pick a winner", nil)
		}
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{
		"nomination_id": c.Param("id"),
		"artwork_id":    best.ArtworkID,
		"average":       best.Average,
		"count":         best.Count,
	}, "winner selected", nil)
}
