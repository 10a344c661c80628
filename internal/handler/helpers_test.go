package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/FelipeGerardo/centenoloyalty/internal/dto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindVentaRequest(t *testing.T, body string) (*dto.RegistrarVentaRequest, bool, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var req dto.RegistrarVentaRequest
	ok := bindAndValidate(c, &req)
	return &req, ok, w
}

func TestBindVenta_TotalCeroEsValido(t *testing.T) {
	// Una venta de $0 (redencion completa, nada que pagar) debe llegar al
	// servicio, no morir en la validacion.
	req, ok, _ := bindVentaRequest(t, `{"total": 0, "puntos_usar": 0}`)

	assert.True(t, ok)
	require.NotNil(t, req.Total)
	assert.True(t, req.Total.IsZero())
}

func TestBindVenta_TotalAusente(t *testing.T) {
	_, ok, w := bindVentaRequest(t, `{"puntos_usar": 3}`)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Total")
}

func TestBindVenta_TotalNegativoPasaAlMotor(t *testing.T) {
	// Un total negativo no es un error de formato: lo rechaza el motor de
	// liquidacion con su propio error (400), no el validador.
	req, ok, _ := bindVentaRequest(t, `{"total": -5}`)

	assert.True(t, ok)
	require.NotNil(t, req.Total)
	assert.True(t, req.Total.IsNegative())
}

func TestBindVenta_JSONInvalido(t *testing.T) {
	_, ok, w := bindVentaRequest(t, `{"total": "no-numerico"`)

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
