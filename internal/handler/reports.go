package handler

import (
	"net/http"
	"strconv"

	"nelaglow/internal/apierror"
	"nelaglow/internal/dto"
	"nelaglow/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// FinanceStats godoc
// @Summary      Resumen financiero
// @Description  Ingresos (pagos), egresos (compras + delivery Lima), neto, cuentas por cobrar y valorizacion de inventario.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        period query string false "week | month (default) | year"
// @Success      200    {object} dto.FinanceStatsResponse
// @Router       /v1/reportes/finanzas [get]
func (h *ReportsHandler) FinanceStats(c *gin.Context) {
	var window dto.ReportWindow
	if err := c.ShouldBindQuery(&window); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(window); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("periodo invalido: use week, month o year"))
		return
	}
	resp, err := h.svc.FinanceStats(c.Request.Context(), window.Period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el reporte"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DailyClose godoc
// @Summary      Cierre diario
// @Description  Total cobrado en el dia, desglosado por metodo de pago, mas los pedidos del dia.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        date query string false "Fecha YYYY-MM-DD (default hoy)"
// @Success      200  {object} dto.DailyCloseResponse
// @Router       /v1/reportes/cierre-diario [get]
func (h *ReportsHandler) DailyClose(c *gin.Context) {
	resp, err := h.svc.DailyClose(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PendingPayments godoc
// @Summary      Cuentas por cobrar
// @Description  Pedidos con saldo pendiente, los mas antiguos primero.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.PendingPaymentRow
// @Router       /v1/reportes/pagos-pendientes [get]
func (h *ReportsHandler) PendingPayments(c *gin.Context) {
	resp, err := h.svc.PendingPayments(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el reporte"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProducts godoc
// @Summary      Productos mas vendidos
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        period query string false "week | month (default) | year"
// @Param        limit  query int    false "Cantidad de filas (default 10)"
// @Success      200    {array} dto.TopProductRow
// @Router       /v1/reportes/top-productos [get]
func (h *ReportsHandler) TopProducts(c *gin.Context) {
	var window dto.ReportWindow
	if err := c.ShouldBindQuery(&window); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	resp, err := h.svc.TopProducts(c.Request.Context(), window.Period, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el reporte"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Restock godoc
// @Summary      Sugerencias de reposicion
// @Description  Productos activos en o bajo su umbral, con unidades sugeridas para reponer hasta el doble del umbral.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} dto.RestockRow
// @Router       /v1/reportes/reposicion [get]
func (h *ReportsHandler) Restock(c *gin.Context) {
	resp, err := h.svc.Restock(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el reporte"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
