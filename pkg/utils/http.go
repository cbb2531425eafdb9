package utils

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// WriteJSON escreve a resposta JSON com o status informado
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("Erro ao enviar resposta")
	}
}

// WriteHTML escreve um documento HTML pronto para impressão
func WriteHTML(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		logrus.WithError(err).Error("Erro ao enviar documento")
	}
}
