package handler

import (
	"net/http"

	"nelaglow/internal/apierror"
	"nelaglow/internal/dto"
	"nelaglow/internal/middleware"
	"nelaglow/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.StockService }

func NewInventoryHandler(svc service.StockService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// RegisterEntry godoc
// @Summary      Registrar ingreso de mercaderia
// @Description  Aplica cada linea como un PURCHASE_IN en una sola transaccion; una linea invalida aborta todo el ingreso.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.PurchaseEntryRequest true "Lineas del ingreso"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Router       /v1/inventario/ingresos [post]
func (h *InventoryHandler) RegisterEntry(c *gin.Context) {
	var req dto.PurchaseEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.RegisterPurchaseEntry(c.Request.Context(), middleware.ActingUserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  ADJUSTMENT_IN suma, ADJUSTMENT_OUT descuenta con proteccion contra stock negativo.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AdjustmentRequest true "Ajuste"
// @Success      201  {object} dto.MovementResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/inventario/ajustes [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ApplyAdjustment(c.Request.Context(), middleware.ActingUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListMovements godoc
// @Summary      Listar movimientos de stock (kardex)
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query string false "UUID del producto"
// @Param        type       query string false "PURCHASE_IN | SALE_OUT | RETURN_IN | ADJUSTMENT_IN | ADJUSTMENT_OUT"
// @Param        page       query int    false "Pagina (default 1)"
// @Param        limit      query int    false "Registros por pagina (default 100)"
// @Success      200        {object} dto.MovementListResponse
// @Router       /v1/inventario/movimientos [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter dto.MovementFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
