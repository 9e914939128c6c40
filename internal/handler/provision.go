package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/nilsb/holtab-provisioner/internal/model"
	"github.com/nilsb/holtab-provisioner/internal/mw"
	"github.com/nilsb/holtab-provisioner/internal/service"
)

// StageFunc is one provisioning stage invoked per delivered message.
type StageFunc func(ctx context.Context, msg model.ProvisioningMessage) (service.Disposition, error)

// StageHandler adapts a stage to the transport contract: 200 accepted,
// 503 redeliver, 400 drop.
func StageHandler(stage string, fn StageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg model.ProvisioningMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := msg.Validate(); err != nil {
			http.Error(w, "invalid provisioning message", http.StatusBadRequest)
			return
		}

		caller, _ := r.Context().Value(mw.CallerCtxKey).(string)
		disp, err := fn(r.Context(), msg)
		if err != nil {
			slog.Warn("stage incomplete",
				"stage", stage, "customer", msg.ExternalID, "type", msg.Type,
				"disposition", disp.String(), "caller", caller, "error", err)
		} else {
			slog.Info("stage handled",
				"stage", stage, "customer", msg.ExternalID, "type", msg.Type,
				"disposition", disp.String())
		}

		switch disp {
		case service.Accepted:
			w.WriteHeader(http.StatusOK)
		case service.Retryable:
			http.Error(w, "resource not available yet", http.StatusServiceUnavailable)
		default:
			http.Error(w, "unresolvable message", http.StatusBadRequest)
		}
	}
}
