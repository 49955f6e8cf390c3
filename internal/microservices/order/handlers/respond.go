package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"oneil-farm-bot/internal/common/logger"
	"oneil-farm-bot/internal/domain"
	"oneil-farm-bot/internal/microservices/order/domain/dto"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem writes the uniform error body.
func writeProblem(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, dto.AckResponse{Success: false, Message: message})
}

// writeError maps a service error onto a status code. Anything unexpected is
// logged and reported without detail.
func writeError(w http.ResponseWriter, lg *logger.Logger, action string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeProblem(w, http.StatusBadRequest, "Données invalides: "+verr.Error())
	case errors.Is(err, domain.ErrInvalidStatus):
		writeProblem(w, http.StatusBadRequest, "Statut invalide")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Commande non trouvée")
	default:
		lg.Error(action, err, nil)
		writeProblem(w, http.StatusInternalServerError, "Erreur serveur")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeProblem(w, http.StatusBadRequest, "Corps JSON invalide")
		return false
	}
	return true
}
