package loyalty

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLiquidar_AcumulacionSimple(t *testing.T) {
	// balance=0, sobrante=0, venta=45, sin redencion → gana 2, sobrante 5
	liq, err := ReglasDefault.Liquidar(Estado{Puntos: 0, Sobrante: decimal.Zero}, d("45"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 0, liq.PuntosUsados)
	assert.Equal(t, 2, liq.PuntosGanados)
	assert.Equal(t, "45", liq.TotalPagado.String())
	assert.Equal(t, "5", liq.SobranteNuevo.String())
	assert.Equal(t, 2, liq.PuntosNuevos)
}

func TestLiquidar_RedencionTotal(t *testing.T) {
	// balance=10, sobrante=15, venta=10, usa 10 → paga 0, no gana, sobrante intacto
	liq, err := ReglasDefault.Liquidar(Estado{Puntos: 10, Sobrante: d("15")}, d("10"), d("10"))
	require.NoError(t, err)
	assert.Equal(t, 10, liq.PuntosUsados)
	assert.Equal(t, 0, liq.PuntosGanados)
	assert.True(t, liq.TotalPagado.IsZero())
	assert.Equal(t, "15", liq.SobranteNuevo.String())
	assert.Equal(t, 0, liq.PuntosNuevos)
}

func TestLiquidar_RedencionRecortadaPorSaldo(t *testing.T) {
	// balance=3, venta=100, pide 5 → recorta a 3; paga 97, gana 4, sobrante 17
	liq, err := ReglasDefault.Liquidar(Estado{Puntos: 3, Sobrante: decimal.Zero}, d("100"), d("5"))
	require.NoError(t, err)
	assert.Equal(t, 3, liq.PuntosUsados)
	assert.Equal(t, "97", liq.TotalPagado.String())
	assert.Equal(t, 4, liq.PuntosGanados)
	assert.Equal(t, "17", liq.SobranteNuevo.String())
	assert.Equal(t, 4, liq.PuntosNuevos)
}

func TestLiquidar_RedencionRecortadaPorTotal(t *testing.T) {
	// No se pueden usar mas puntos que el total de la venta.
	liq, err := ReglasDefault.Liquidar(Estado{Puntos: 50, Sobrante: decimal.Zero}, d("7.50"), d("50"))
	require.NoError(t, err)
	assert.Equal(t, 7, liq.PuntosUsados) // floor(7.50)
	assert.Equal(t, "0.5", liq.TotalPagado.String())
	assert.Equal(t, 0, liq.PuntosGanados)
	assert.Equal(t, "0.5", liq.SobranteNuevo.String())
	assert.Equal(t, 43, liq.PuntosNuevos)
}

func TestLiquidar_SolicitudNegativaOFraccionaria(t *testing.T) {
	// Negativo se trata como 0; fraccionario se trunca.
	liq, err := ReglasDefault.Liquidar(Estado{Puntos: 10, Sobrante: decimal.Zero}, d("40"), d("-3"))
	require.NoError(t, err)
	assert.Equal(t, 0, liq.PuntosUsados)
	assert.Equal(t, 2, liq.PuntosGanados)

	liq, err = ReglasDefault.Liquidar(Estado{Puntos: 10, Sobrante: decimal.Zero}, d("40"), d("2.9"))
	require.NoError(t, err)
	assert.Equal(t, 2, liq.PuntosUsados)
	assert.Equal(t, "38", liq.TotalPagado.String())
}

func TestLiquidar_MontoNegativo(t *testing.T) {
	_, err := ReglasDefault.Liquidar(Estado{}, d("-1"), decimal.Zero)
	assert.ErrorIs(t, err, ErrMontoInvalido)
}

func TestLiquidar_VentaCero(t *testing.T) {
	liq, err := ReglasDefault.Liquidar(Estado{Puntos: 5, Sobrante: d("19.99")}, decimal.Zero, d("5"))
	require.NoError(t, err)
	assert.Equal(t, 0, liq.PuntosUsados) // floor(0/1) = 0 puntos caben en la venta
	assert.Equal(t, 0, liq.PuntosGanados)
	assert.Equal(t, "19.99", liq.SobranteNuevo.String())
	assert.Equal(t, 5, liq.PuntosNuevos)
}

func TestLiquidar_SobranteCompletaPunto(t *testing.T) {
	// sobrante 15 + pago 5 = 20 → exactamente 1 punto, sobrante vuelve a 0
	liq, err := ReglasDefault.Liquidar(Estado{Puntos: 0, Sobrante: d("15")}, d("5"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 1, liq.PuntosGanados)
	assert.True(t, liq.SobranteNuevo.IsZero())
}

func TestLiquidar_CentavosEnSobrante(t *testing.T) {
	liq, err := ReglasDefault.Liquidar(Estado{Puntos: 0, Sobrante: d("19.50")}, d("20.75"), decimal.Zero)
	require.NoError(t, err)
	// combinado = 40.25 → 2 puntos, sobrante 0.25
	assert.Equal(t, 2, liq.PuntosGanados)
	assert.Equal(t, "0.25", liq.SobranteNuevo.String())
}

func TestLiquidar_ReglasPersonalizadas(t *testing.T) {
	// 1 punto por cada 10 pesos, cada punto vale 2 pesos.
	reglas := Reglas{TasaAcumulacion: 10, ValorRedencion: 2}
	liq, err := reglas.Liquidar(Estado{Puntos: 4, Sobrante: decimal.Zero}, d("25"), d("10"))
	require.NoError(t, err)
	// max por venta = floor(25/2) = 12, recorta a 4 disponibles → paga 25-8=17
	assert.Equal(t, 4, liq.PuntosUsados)
	assert.Equal(t, "17", liq.TotalPagado.String())
	assert.Equal(t, 1, liq.PuntosGanados)
	assert.Equal(t, "7", liq.SobranteNuevo.String())
}

func TestLiquidar_ReglasCeroUsanDefaults(t *testing.T) {
	liq, err := Reglas{}.Liquidar(Estado{}, d("45"), decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, 2, liq.PuntosGanados)
	assert.Equal(t, "5", liq.SobranteNuevo.String())
}

// Propiedades: sobrante siempre en [0, 20), saldo nunca negativo,
// pagado + usados == total.
func TestLiquidar_Invariantes(t *testing.T) {
	casos := []struct {
		puntos   int
		sobrante string
		total    string
		usar     string
	}{
		{0, "0", "0", "0"},
		{0, "19.99", "0.01", "0"},
		{1, "0", "1", "1"},
		{100, "10", "33.33", "200"},
		{7, "5.25", "19.99", "7"},
		{3, "0", "100", "5"},
		{50, "12.80", "250.40", "17.5"},
		{2, "18", "2", "99"},
	}
	veinte := decimal.NewFromInt(20)
	for _, c := range casos {
		estado := Estado{Puntos: c.puntos, Sobrante: d(c.sobrante)}
		liq, err := ReglasDefault.Liquidar(estado, d(c.total), d(c.usar))
		require.NoError(t, err, "caso %+v", c)

		assert.True(t, liq.SobranteNuevo.GreaterThanOrEqual(decimal.Zero), "caso %+v", c)
		assert.True(t, liq.SobranteNuevo.LessThan(veinte), "caso %+v", c)
		assert.GreaterOrEqual(t, liq.PuntosNuevos, 0, "caso %+v", c)
		assert.LessOrEqual(t, liq.PuntosUsados, c.puntos, "caso %+v", c)
		assert.True(t, liq.TotalPagado.GreaterThanOrEqual(decimal.Zero), "caso %+v", c)

		// pagado + usados*$1 reconstruye el total
		reconstruido := liq.TotalPagado.Add(decimal.NewFromInt(int64(liq.PuntosUsados)))
		assert.True(t, reconstruido.Equal(d(c.total)), "caso %+v: %s", c, reconstruido)
	}
}
