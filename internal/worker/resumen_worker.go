package worker

// Processes resumen jobs from QueueResumen: sends the post-sale summary
// (puntos usados/ganados, total pagado, saldo) to the cliente's email.
// Best effort — the settlement itself never waits on this.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FelipeGerardo/centenoloyalty/internal/infra"

	"github.com/rs/zerolog/log"
)

// ResumenJobPayload is the job envelope sent to QueueResumen.
type ResumenJobPayload struct {
	ToEmail       string `json:"to_email"`
	NombreCliente string `json:"nombre_cliente"`
	Total         string `json:"total"`
	TotalPagado   string `json:"total_pagado"`
	PuntosUsados  int    `json:"puntos_usados"`
	PuntosGanados int    `json:"puntos_ganados"`
	PuntosNuevos  int    `json:"puntos_nuevos"`
}

type ResumenWorker struct {
	mailer *infra.Mailer
}

func NewResumenWorker(mailer *infra.Mailer) *ResumenWorker {
	return &ResumenWorker{mailer: mailer}
}

// Process sends the summary email for one settled venta.
func (w *ResumenWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload ResumenJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("resumen_worker: invalid payload")
		return nil // malformed jobs are not retryable
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("resumen_worker: empty to_email — skipping")
		return nil
	}

	body := fmt.Sprintf(
		"Hola %s,\n\nGracias por tu visita.\n\nTotal: $%s\nPagado: $%s\nPuntos usados: %d\nPuntos ganados: %d\nSaldo de puntos: %d\n",
		payload.NombreCliente, payload.Total, payload.TotalPagado,
		payload.PuntosUsados, payload.PuntosGanados, payload.PuntosNuevos,
	)

	if err := w.mailer.SendResumen(payload.ToEmail, "Resumen de tu compra", body); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("resumen_worker: failed to send email")
		return err
	}
	log.Info().Str("to", payload.ToEmail).Msg("resumen_worker: resumen sent")
	return nil
}
