package service

import (
	"errors"
	"fmt"

	"nelaglow/internal/model"
)

// Domain error taxonomy. The HTTP layer maps these onto status codes; the
// messages carry enough context (names, quantities, statuses) to render
// directly to the user.
var (
	ErrUnauthorized    = errors.New("operacion requiere un usuario autenticado")
	ErrOrderNotFound   = errors.New("pedido no encontrado")
	ErrProductNotFound = errors.New("producto no encontrado")
	ErrClientNotFound  = errors.New("cliente no encontrado")

	// ErrPaymentRequired: PROVINCIA shipments go through a third-party agency
	// and must be fully paid before dispatch.
	ErrPaymentRequired = errors.New("los pedidos a provincia requieren pago completo por adelantado")

	// ErrInvalidShippingConfig: contraentrega is collected by our own courier,
	// so it only exists for delivery within Lima.
	ErrInvalidShippingConfig = errors.New("contraentrega solo es valida para delivery en Lima")

	ErrOrderNotEditable = errors.New("el pedido no admite nuevos items en su estado actual")
	ErrOrderNotPayable  = errors.New("el pedido no admite pagos en su estado actual")

	// ErrTrackingCodeRequired: PROVINCIA orders cannot be marked shipped
	// without the agency tracking code.
	ErrTrackingCodeRequired = errors.New("los pedidos a provincia requieren codigo de seguimiento para marcarse como enviados")

	// ErrParentNotSellable: a parent product groups variants and carries no
	// sellable stock of its own.
	ErrParentNotSellable = errors.New("el producto agrupa variantes; venda una variante especifica")

	// ErrNestedVariant: the catalog hierarchy is one level deep.
	ErrNestedVariant = errors.New("una variante no puede tener variantes propias")
)

// InsufficientStockError names the product and the available quantity so the
// seller can offer an alternative on the spot.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q: solicitado %d, disponible %d",
		e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError surfaces the offending from/to pair.
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transicion de estado no permitida: %s a %s", e.From, e.To)
}
