package handler

import (
	"errors"
	"net/http"

	"github.com/vfg2006/pdv-api/internal/scheduler"
	"github.com/vfg2006/pdv-api/pkg/apiErrors"
	"github.com/vfg2006/pdv-api/pkg/utils"
)

// RunSync dispara uma sincronização em segundo plano
func RunSync(service Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := service.TriggerManualSync()
		if errors.Is(err, scheduler.ErrSyncInProgress) {
			apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, err.Error(), nil)
			return
		}
		if err != nil {
			fail(w, r, err)
			return
		}

		utils.WriteJSON(w, http.StatusAccepted, map[string]string{
			"mensagem": "Sincronização iniciada",
		})
	}
}

func SyncStatus(service Syncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok(w, service.GetStatus())
	}
}
