package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/palitra-app/palitra/internal/application"
	"github.com/palitra-app/palitra/internal/domain/entity"
	"github.com/palitra-app/palitra/pkg/response"
	"github.com/palitra-app/palitra/pkg/validation"
)

// maxUploadBytes bounds the multipart body of a single submission.
const maxUploadBytes = 20 << 20

// SubmissionHandler serves the participant side: uploads, own gallery,
// signed view links and search.
type SubmissionHandler struct {
	Svc      *app.SubmissionService
	Contests *app.ContestService
	Logger   *logrus.Logger
}

func NewSubmissionHandler(svc *app.SubmissionService, contests *app.ContestService, logger *logrus.Logger) *SubmissionHandler {
	return &SubmissionHandler{Svc: svc, Contests: contests, Logger: logger}
}

type participateForm struct {
	CompetitionID string `form:"competition_id" binding:"required,uuid"`
	NominationID  string `form:"nomination_id" binding:"required,uuid"`
	DisplayName   string `form:"display_name" binding:"required,max=200"`
}

func artworkView(a *entity.Artwork) gin.H {
	return gin.H{
		"id":            a.ID,
		"nomination_id": a.NominationID,
		"display_name":  a.DisplayName,
		"status":        a.Status,
		"created_at":    a.CreatedAt,
	}
}

// Participate POST /api/participate (multipart: file + form fields)
func (h *SubmissionHandler) Participate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	var form participateForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer f.Close()

	a, err := h.Svc.Submit(c.Request.Context(), app.SubmitInput{
		UserID:        c.GetString("userID"),
		AuthorName:    c.GetString("userName"),
		CompetitionID: form.CompetitionID,
		NominationID:  form.NominationID,
		Filename:      fh.Filename,
		DisplayName:   form.DisplayName,
		File:          f,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrCompetitionClosed):
			response.Error[any](c, http.StatusConflict, "competition is not accepting submissions", nil)
		case errors.Is(err, app.ErrNominationUnavailable):
			response.Error[any](c, http.StatusConflict, "nomination is not available", nil)
		case errors.Is(err, app.ErrSubmissionLimit):
			response.Error[any](c, http.StatusConflict, "submission limit for this nomination reached", nil)
		case errors.Is(err, app.ErrUnsupportedFileType):
			response.Error[any](c, http.StatusBadRequest, "unsupported file type", nil)
		default:
			h.Logger.WithError(err).Error("submission failed")
			response.Error[any](c, http.StatusInternalServerError, "submission failed", nil)
		}
		return
	}
	response.Success(c, http.StatusCreated, artworkView(a), "artwork submitted for moderation", nil)
}

// ListOwn GET /api/submissions
func (h *SubmissionHandler) ListOwn(c *gin.Context) {
	arts, err := h.Svc.ListOwn(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		h.Logger.WithError(err).Error("list submissions failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list submissions", nil)
		return
	}
	out := make([]gin.H, 0, len(arts))
	for i := range arts {
		out = append(out, artworkView(&arts[i]))
	}
	response.Success(c, http.StatusOK, out, "submissions", map[string]any{"count": len(out)})
}

// ArtworkURL GET /api/artworks/:id/url
func (h *SubmissionHandler) ArtworkURL(c *gin.Context) {
	url, err := h.Svc.ArtworkURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrArtworkNotFound) {
			response.Error[any](c, http.StatusNotFound, "artwork not found", nil)
			return
		}
		h.Logger.WithError(err).Error("signed url failed")
		response.Error[any](c, http.StatusInternalServerError, "could not sign artwork url", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"url": url}, "signed url", nil)
}

// OpenNominations GET /api/nominations?competition_id=...
func (h *SubmissionHandler) OpenNominations(c *gin.Context) {
	compID := c.Query("competition_id")
	if compID == "" {
		response.Error[any](c, http.StatusBadRequest, "competition_id is required", nil)
		return
	}
	noms, err := h.Contests.OpenNominations(c.Request.Context(), compID)
	if err != nil {
		if errors.Is(err, app.ErrCompetitionNotFound) {
			response.Error[any](c, http.StatusNotFound, "competition not found", nil)
			return
		}
		h.Logger.WithError(err).Error("list nominations failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list nominations", nil)
		return
	}
	response.Success(c, http.StatusOK, noms, "nominations", map[string]any{"count": len(noms)})
}

// NominationArtworks GET /api/nominations/:id/artworks
// Participants see the public gallery (approved only); jurors and
// admins also see works still in moderation.
func (h *SubmissionHandler) NominationArtworks(c *gin.Context) {
	arts, err := h.Contests.NominationArtworks(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, app.ErrNominationNotFound) {
			response.Error[any](c, http.StatusNotFound, "nomination not found", nil)
			return
		}
		h.Logger.WithError(err).Error("list nomination artworks failed")
		response.Error[any](c, http.StatusInternalServerError, "could not list artworks", nil)
		return
	}
	role := entity.ParseRole(c.GetString("userRole"))
	out := make([]gin.H, 0, len(arts))
	for i := range arts {
		if role == entity.RoleParticipant && arts[i].Status != entity.ArtworkApproved {
			continue
		}
		out = append(out, artworkView(&arts[i]))
	}
	response.Success(c, http.StatusOK, out, "artworks", map[string]any{"count": len(out)})
}

// Search GET /api/artworks/search?q=...&size=...
func (h *SubmissionHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	docs, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("artwork search failed")
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, docs, "search results", map[string]any{"count": len(docs)})
}
