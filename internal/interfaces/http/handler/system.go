package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/letterdesk/backend/internal/interfaces/http/dto"
)

// SystemHandler handles health, readiness and snapshot refresh endpoints
type SystemHandler struct {
	BaseHandler
	state     *app.StateStore
	loader    *app.Loader
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(state *app.StateStore, loader *app.Loader) *SystemHandler {
	return &SystemHandler{
		state:     state,
		loader:    loader,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse reports whether the snapshot has loaded far enough
// to serve scoped requests.
type ReadinessResponse struct {
	Ready           bool   `json:"ready"`
	SnapshotVersion uint64 `json:"snapshot_version"`
	Companies       int    `json:"companies"`
	Letters         int    `json:"letters"`
	AccessEntries   int    `json:"access_entries"`
}

// RefreshResponse reports the snapshot state after a reload
type RefreshResponse struct {
	SnapshotVersion uint64 `json:"snapshot_version"`
	Companies       int    `json:"companies"`
	Letters         int    `json:"letters"`
	AccessEntries   int    `json:"access_entries"`
}

// GetSystemInfo returns basic system information including version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      "Letter Reference Service",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	h.Success(c, info)
}

// Health is the liveness probe. It answers regardless of snapshot state
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// Ready is the readiness probe. Scoped requests are rejected until the
// access list load has settled, so readiness tracks the same condition
func (h *SystemHandler) Ready(c *gin.Context) {
	snap := h.state.Snapshot()
	resp := ReadinessResponse{
		Ready:           snap.AccessLoaded,
		SnapshotVersion: snap.Version,
		Companies:       len(snap.Companies),
		Letters:         len(snap.Letters),
		AccessEntries:   len(snap.AccessEntries),
	}
	if !snap.AccessLoaded {
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}
	h.Success(c, resp)
}

// Refresh reloads companies, letters and access entries from the record
// store into a fresh snapshot
func (h *SystemHandler) Refresh(c *gin.Context) {
	if _, err := getPrincipal(c); err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.loader.Refresh(c.Request.Context()); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeStore, "snapshot refresh failed")
		return
	}

	snap := h.state.Snapshot()
	h.Success(c, RefreshResponse{
		SnapshotVersion: snap.Version,
		Companies:       len(snap.Companies),
		Letters:         len(snap.Letters),
		AccessEntries:   len(snap.AccessEntries),
	})
}
