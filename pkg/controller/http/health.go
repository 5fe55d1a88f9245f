package http

import (
	"net/http"

	"github.com/m-mizutani/themepreview/pkg/domain/model"
	"github.com/m-mizutani/themepreview/pkg/domain/types"
)

func healthHandler(inFlight func() int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := &model.HealthStatus{
			Status:  "healthy",
			Service: types.ServiceName,
			Version: types.Version,
		}
		if inFlight != nil {
			status.InFlight = inFlight()
		}

		writeJSON(r.Context(), w, http.StatusOK, status)
	}
}
