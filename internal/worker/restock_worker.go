package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"nelaglow/internal/infra"

	"github.com/rs/zerolog/log"
)

// RestockAlertWorker mails low-stock alerts to the operations inbox.
// Delivery is best-effort; a failed send is logged, never retried here.
type RestockAlertWorker struct {
	mailer *infra.Mailer
	to     string
}

func NewRestockAlertWorker(mailer *infra.Mailer, to string) *RestockAlertWorker {
	return &RestockAlertWorker{mailer: mailer, to: to}
}

func (w *RestockAlertWorker) Handle(ctx context.Context, payload json.RawMessage) {
	var alert RestockAlertPayload
	if err := json.Unmarshal(payload, &alert); err != nil {
		log.Error().Err(err).Msg("restock alert: bad payload")
		return
	}
	if w.to == "" {
		log.Warn().Str("product", alert.ProductName).Msg("restock alert: no ALERT_EMAIL configured")
		return
	}

	subject := fmt.Sprintf("Stock bajo: %s (%d unidades)", alert.ProductName, alert.Stock)
	body := fmt.Sprintf(
		"El producto %s quedó con %d unidades (mínimo configurado: %d).\nConsidere reponer stock.\n\nProducto: %s",
		alert.ProductName, alert.Stock, alert.Threshold, alert.ProductID,
	)
	if err := w.mailer.Send(w.to, subject, body); err != nil {
		log.Error().Err(err).Str("product", alert.ProductName).Msg("restock alert: send failed")
		return
	}
	log.Info().Str("product", alert.ProductName).Int("stock", alert.Stock).Msg("restock alert sent")
}
