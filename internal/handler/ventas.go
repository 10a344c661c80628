package handler

import (
	"net/http"

	"github.com/FelipeGerardo/centenoloyalty/internal/apierror"
	"github.com/FelipeGerardo/centenoloyalty/internal/dto"
	"github.com/FelipeGerardo/centenoloyalty/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// RegistrarVenta godoc
// @Summary      Registrar una venta con puntos
// @Description  Liquida la venta contra el saldo del cliente: recorta los puntos a usar, acumula 1 punto por cada $20 pagados (arrastrando el sobrante) y registra la visita del dia si es la primera.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                    true "UUID del cliente"
// @Param        body body dto.RegistrarVentaRequest true "Total y puntos a usar"
// @Success      201  {object} dto.VentaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/clientes/{id}/ventas [post]
func (h *VentasHandler) RegistrarVenta(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.RegistrarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarVenta(c.Request.Context(), clienteID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary      Historial de ventas del cliente
// @Description  Lista paginada, de la mas reciente a la mas antigua.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string true  "UUID del cliente"
// @Param        page  query int    false "Pagina (default 1)"
// @Param        limit query int    false "Registros por pagina (default 50)"
// @Success      200   {object} dto.VentaListResponse
// @Failure      404   {object} apierror.APIError
// @Router       /v1/clientes/{id}/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListVentas(c.Request.Context(), clienteID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarVisitas godoc
// @Summary      Visitas del cliente
// @Description  Una entrada por dia calendario con actividad, de la mas reciente a la mas antigua.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del cliente"
// @Success      200 {array}  dto.VisitaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/clientes/{id}/visitas [get]
func (h *VentasHandler) ListarVisitas(c *gin.Context) {
	clienteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ListVisitas(c.Request.Context(), clienteID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
