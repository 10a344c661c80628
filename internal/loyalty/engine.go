// Package loyalty implements the sale-settlement arithmetic for the points
// program. It is pure computation: no storage, no clocks, no I/O — the caller
// (service layer) fetches the cliente state, runs Liquidar, and persists the
// resulting deltas.
package loyalty

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Exchange rates of the program. The asymmetry is intentional business logic:
// a point is worth $1 when spent but costs $20 of real payment to earn.
const (
	TasaAcumulacionDefault = 20 // pesos pagados por cada punto ganado
	ValorRedencionDefault  = 1  // pesos descontados por cada punto usado
)

// ErrMontoInvalido rejects a settlement whose sale total is negative.
var ErrMontoInvalido = errors.New("total de venta invalido")

// Reglas carries the configured exchange rates. Zero values are replaced by
// the defaults so an empty Reglas{} behaves like the production program.
type Reglas struct {
	TasaAcumulacion int64
	ValorRedencion  int64
}

// ReglasDefault is the production configuration: $20 per point earned,
// $1 per point redeemed.
var ReglasDefault = Reglas{
	TasaAcumulacion: TasaAcumulacionDefault,
	ValorRedencion:  ValorRedencionDefault,
}

// Estado is the per-cliente ledger state the engine operates on.
// Invariants on entry: Puntos >= 0, Sobrante in [0, TasaAcumulacion).
type Estado struct {
	Puntos   int
	Sobrante decimal.Decimal
}

// Liquidacion is the outcome of settling one sale. The caller persists
// PuntosNuevos and SobranteNuevo on the cliente and records an immutable
// venta with the remaining fields.
type Liquidacion struct {
	PuntosUsados  int
	PuntosGanados int
	TotalPagado   decimal.Decimal
	PuntosNuevos  int
	SobranteNuevo decimal.Decimal
}

// Liquidar settles one sale against the cliente's current state.
//
//  1. totalVenta must be >= 0, otherwise ErrMontoInvalido.
//  2. puntosSolicitados is clamped, never rejected: floored to a whole
//     non-negative number, capped by the points held and by the sale total
//     (a point discounts ValorRedencion pesos, so at most
//     floor(total/ValorRedencion) points fit in one sale).
//  3. TotalPagado = totalVenta - puntosUsados*ValorRedencion.
//  4. Points accrue on real money paid: the previous sobrante plus
//     TotalPagado yields floor(combined/TasaAcumulacion) points, the rest
//     carries forward as the new sobrante.
//
// Postconditions: SobranteNuevo in [0, TasaAcumulacion), PuntosNuevos >= 0.
func (r Reglas) Liquidar(estado Estado, totalVenta decimal.Decimal, puntosSolicitados decimal.Decimal) (*Liquidacion, error) {
	if totalVenta.IsNegative() {
		return nil, ErrMontoInvalido
	}

	tasa := decimal.NewFromInt(r.tasaAcumulacion())
	valor := decimal.NewFromInt(r.valorRedencion())

	// Clamp the requested redemption to a usable whole number of points.
	solicitados := puntosSolicitados.Floor()
	if solicitados.IsNegative() {
		solicitados = decimal.Zero
	}
	maxPorVenta := totalVenta.Div(valor).Floor()
	puntosUsados := solicitados
	if puntosUsados.GreaterThan(maxPorVenta) {
		puntosUsados = maxPorVenta
	}
	if disponibles := decimal.NewFromInt(int64(estado.Puntos)); puntosUsados.GreaterThan(disponibles) {
		puntosUsados = disponibles
	}

	totalPagado := totalVenta.Sub(puntosUsados.Mul(valor))

	// Accrual counts the sobrante carried from previous sales.
	combinado := estado.Sobrante.Add(totalPagado)
	puntosGanados := combinado.Div(tasa).Floor()
	sobranteNuevo := combinado.Sub(puntosGanados.Mul(tasa))

	usados := int(puntosUsados.IntPart())
	ganados := int(puntosGanados.IntPart())

	return &Liquidacion{
		PuntosUsados:  usados,
		PuntosGanados: ganados,
		TotalPagado:   totalPagado,
		PuntosNuevos:  estado.Puntos - usados + ganados,
		SobranteNuevo: sobranteNuevo,
	}, nil
}

func (r Reglas) tasaAcumulacion() int64 {
	if r.TasaAcumulacion <= 0 {
		return TasaAcumulacionDefault
	}
	return r.TasaAcumulacion
}

func (r Reglas) valorRedencion() int64 {
	if r.ValorRedencion <= 0 {
		return ValorRedencionDefault
	}
	return r.ValorRedencion
}
