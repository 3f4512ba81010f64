package handler

import (
	"net/http"

	"nelaglow/internal/apierror"
	"nelaglow/internal/dto"
	"nelaglow/internal/middleware"
	"nelaglow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	svc      service.OrderService
	payments service.PaymentService
}

func NewOrdersHandler(svc service.OrderService, payments service.PaymentService) *OrdersHandler {
	return &OrdersHandler{svc: svc, payments: payments}
}

// Create godoc
// @Summary      Crear pedido
// @Description  Crea un pedido ACID: numera, descuenta stock (SALE_OUT por item), registra pago inicial e historial. Provincia exige pago completo.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateOrderRequest true "Detalle del pedido"
// @Success      201  {object} dto.OrderResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/pedidos [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.ActingUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ImportHistorical godoc
// @Summary      Importar pedido historico
// @Description  Registra un pedido anterior al sistema. No genera movimientos de stock.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.HistoricalOrderRequest true "Pedido historico"
// @Success      201  {object} dto.OrderResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/pedidos/importar [post]
func (h *OrdersHandler) ImportHistorical(c *gin.Context) {
	var req dto.HistoricalOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ImportHistorical(c.Request.Context(), middleware.ActingUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Listar pedidos
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        status    query string false "Estado o all"
// @Param        date      query string false "Fecha YYYY-MM-DD"
// @Param        client_id query string false "UUID del cliente"
// @Param        page      query int    false "Pagina (default 1)"
// @Param        limit     query int    false "Registros por pagina (default 50)"
// @Success      200       {object} dto.OrderListResponse
// @Router       /v1/pedidos [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar pedidos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Obtener pedido con items, pagos e historial
// @Tags         pedidos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del pedido"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/pedidos/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddItem godoc
// @Summary      Agregar item a un pedido abierto
// @Description  Descuenta stock y recalcula el saldo. No toca lo ya pagado.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del pedido"
// @Param        body body dto.AddItemRequest true "Item a agregar"
// @Success      200  {object} dto.OrderResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pedidos/{id}/items [post]
func (h *OrdersHandler) AddItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), middleware.ActingUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddPayment godoc
// @Summary      Registrar pago parcial o total
// @Description  Agrega un abono al saldo del pedido y avanza el estado (PARTIAL_PAYMENT / PAID) sin retroceder nunca.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del pedido"
// @Param        body body dto.PaymentRequest true "Pago"
// @Success      200  {object} dto.OrderResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pedidos/{id}/pagos [post]
func (h *OrdersHandler) AddPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.PaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.payments.Add(c.Request.Context(), middleware.ActingUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Cancelar pedido
// @Description  Cancela y restaura stock via RETURN_IN por cada item. Los pagos no se revierten.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del pedido"
// @Param        body body dto.CancelOrderRequest true "Motivo de cancelacion"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pedidos/{id} [delete]
func (h *OrdersHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CancelOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), middleware.ActingUserID(c), id, req.Notes); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkShipped godoc
// @Summary      Marcar pedido como enviado
// @Description  PAID a SHIPPED. Provincia exige codigo de seguimiento de la agencia.
// @Tags         pedidos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del pedido"
// @Param        body body dto.ShipOrderRequest false "Datos de envio"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/pedidos/{id}/enviar [post]
func (h *OrdersHandler) MarkShipped(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.ShipOrderRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.MarkShipped(c.Request.Context(), middleware.ActingUserID(c), id, req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkDelivered godoc
// @Summary      Marcar pedido como entregado
// @Tags         pedidos
// @Security     BearerAuth
// @Param        id path string true "UUID del pedido"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/pedidos/{id}/entregar [post]
func (h *OrdersHandler) MarkDelivered(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	if err := h.svc.MarkDelivered(c.Request.Context(), middleware.ActingUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
