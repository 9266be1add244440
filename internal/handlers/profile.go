package handlers

import (
	"errors"
	"net/http"

	"heatzone/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusPainted = "painted"
	statusSaved   = "saved"
	statusSet     = "set"

	errGetState        = "failed to load profile state"
	errSaveProfile     = "failed to publish profile"
	errSaveOffline     = "message bus is disconnected; save is unavailable"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Respond with a status and include the current state (best-effort).
func (h *Handler) respondWithStatusAndState(c *gin.Context, status string, extra gin.H) {
	ctx := c.Request.Context()
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	st, err := h.services.Profile.State(ctx)
	if err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// Request DTOs for the profile endpoints.
type modeRequest struct {
	Mode *int `json:"mode" binding:"required"` // 0..5
}

type cellRequest struct {
	Day  *int `json:"day" binding:"required"`  // 0..6, Monday first
	Slot *int `json:"slot" binding:"required"` // 0..95, quarter hours
}

type setpointRequest struct {
	Index *int     `json:"index" binding:"required"` // 1..4
	Value *float64 `json:"value" binding:"required"`
}

type temperatureRequest struct {
	Value *float64 `json:"value" binding:"required"`
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get profile state
// @Description  Weekly schedule matrix, setpoints, selected paint mode, and revision counter.
// @Tags         profile
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Profile.State(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "profile_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Select paint mode
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{\"mode\":2}"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/mode [post]
// @Security     BearerAuth
func (h *Handler) selectMode(c *gin.Context) {
	var req modeRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if err := h.services.Profile.SelectMode(c.Request.Context(), *req.Mode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{"mode": *req.Mode})
}

// @Summary      Begin paint gesture
// @Tags         profile
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/paint/begin [post]
// @Security     BearerAuth
func (h *Handler) beginPaint(c *gin.Context) {
	var req cellRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if err := h.services.Profile.BeginPaint(c.Request.Context(), *req.Day, *req.Slot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusPainted, gin.H{})
}

// @Summary      Extend paint gesture
// @Description  Recomputes the painted span from the gesture origin; shrinking a drag reverts cells outside the new span.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/paint/move [post]
// @Security     BearerAuth
func (h *Handler) movePaint(c *gin.Context) {
	var req cellRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if err := h.services.Profile.MovePaint(c.Request.Context(), *req.Day, *req.Slot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusPainted, gin.H{})
}

// @Summary      End paint gesture
// @Tags         profile
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/paint/end [post]
// @Security     BearerAuth
func (h *Handler) endPaint(c *gin.Context) {
	if err := h.services.Profile.EndPaint(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusOK, gin.H{})
}

// @Summary      Cancel paint gesture
// @Description  Closes the gesture when the pointer leaves the grid; cells painted so far stay.
// @Tags         profile
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/paint/cancel [post]
// @Security     BearerAuth
func (h *Handler) cancelPaint(c *gin.Context) {
	if err := h.services.Profile.CancelPaint(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusOK, gin.H{})
}

// @Summary      Set a mode setpoint
// @Description  Index 1-3 accept 15-30 °C, index 4 accepts 5-20 °C, all in 0.5° steps.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/setpoint [post]
// @Security     BearerAuth
func (h *Handler) setSetpoint(c *gin.Context) {
	var req setpointRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if err := h.services.Profile.SetSetpoint(c.Request.Context(), *req.Index, *req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{})
}

// @Summary      Set away temperature
// @Tags         profile
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/away [post]
// @Security     BearerAuth
func (h *Handler) setAwayTemp(c *gin.Context) {
	var req temperatureRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if err := h.services.Profile.SetAwayTemp(c.Request.Context(), *req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{})
}

// @Summary      Set holiday temperature
// @Tags         profile
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/holiday [post]
// @Security     BearerAuth
func (h *Handler) setHolidayTemp(c *gin.Context) {
	var req temperatureRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if err := h.services.Profile.SetHolidayTemp(c.Request.Context(), *req.Value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{})
}

// @Summary      Toggle profile activation
// @Tags         profile
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/active [post]
// @Security     BearerAuth
func (h *Handler) setActive(c *gin.Context) {
	var req activeRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	if err := h.services.Profile.SetActive(c.Request.Context(), *req.Active); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondWithStatusAndState(c, statusSet, gin.H{"active": *req.Active})
}

// @Summary      Save profile to bus
// @Description  Publishes all fourteen retained fields. Returns 409 while the broker connection is down.
// @Tags         profile
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/profile/save [post]
// @Security     BearerAuth
func (h *Handler) saveProfile(c *gin.Context) {
	if err := h.services.Sync.Save(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrBusDisconnected) {
			c.JSON(http.StatusConflict, gin.H{"error": errSaveOffline})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveProfile, "profile_save_failed", err)
		return
	}
	h.respondWithStatusAndState(c, statusSaved, gin.H{})
}

// @Summary      Sync status
// @Tags         profile
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/sync [get]
// @Security     BearerAuth
func (h *Handler) getSyncStatus(c *gin.Context) {
	st, err := h.services.Sync.Status(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load sync status", "sync_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
