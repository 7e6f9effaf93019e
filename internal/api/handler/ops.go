package handler

import (
	"net/http"
	"time"

	"github.com/gearswap/gearswap/internal/api/models"
	"github.com/gearswap/gearswap/internal/api/response"
	"github.com/gearswap/gearswap/internal/provider/resilience"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - external provider health.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	overall := models.HealthStatusOK
	var providers []models.ProviderStatus
	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			status := models.HealthStatusOK
			switch {
			case ph.IsUnhealthy():
				status = models.HealthStatusFail
				overall = models.HealthStatusDegraded
			case ph.IsDegraded():
				status = models.HealthStatusDegraded
				if overall == models.HealthStatusOK {
					overall = models.HealthStatusDegraded
				}
			}

			p := models.ProviderStatus{
				Provider: ph.Name,
				Status:   status,
			}
			if ph.LastSuccessAt != nil {
				ts := models.Timestamp(*ph.LastSuccessAt)
				p.LastSuccessAt = &ts
			}
			if ph.LastFailureAt != nil {
				ts := models.Timestamp(*ph.LastFailureAt)
				p.LastFailureAt = &ts
			}
			if ph.LastError != "" {
				msg := ph.LastError
				p.Message = &msg
			}
			providers = append(providers, p)
		}
	}

	// Both external providers serve the distance subsystem; matching is
	// database-backed and degrades with the service itself.
	subsystems := []models.SubsystemStatus{
		{Name: "distance", Status: overall},
		{Name: "matching", Status: models.HealthStatusOK},
	}

	response.JSON(w, r, http.StatusOK, models.SystemStatus{
		Status:     overall,
		Time:       now,
		Subsystems: subsystems,
		Providers:  providers,
	})
}
