package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dmehra2102/figurine-storefront/internal/notification/domain"
	orderdom "github.com/dmehra2102/figurine-storefront/internal/order/domain"
)

var ErrNoRecipient = errors.New("order has no customer email")

var itemRows = template.Must(template.New("rows").Funcs(template.FuncMap{"money": money}).Parse(
	`{{range .}}<tr>
      <td>{{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Title}}" width="64" height="64">{{end}}</td>
      <td>{{.Title}} &times; {{.Quantity}}</td>
      <td style="text-align: right;">{{money .UnitPrice}}</td>
    </tr>{{end}}`))

type Service struct {
	log    *slog.Logger
	mailer Mailer
	tpl    domain.Template
}

func NewService(log *slog.Logger, mailer Mailer, tpl domain.Template) *Service {
	return &Service{log: log, mailer: mailer, tpl: tpl}
}

func (s *Service) SendOrderConfirmation(ctx context.Context, ev orderdom.OrderPaid) error {
	if strings.TrimSpace(ev.CustomerEmail) == "" {
		return ErrNoRecipient
	}

	var rows bytes.Buffer
	if err := itemRows.Execute(&rows, ev.Items); err != nil {
		return fmt.Errorf("render item rows: %w", err)
	}
	note := "Your order will be on its way soon. We'll send tracking details once it ships."
	if ev.Pickup {
		note = "We'll let you know as soon as your order is ready for pickup."
	}
	data := map[string]any{
		"customerName":    orderdom.Customer{Name: ev.CustomerName}.FirstName(),
		"orderNumber":     ev.Number,
		"itemRows":        template.HTML(rows.String()),
		"subtotal":        money(ev.Subtotal),
		"shippingFee":     money(ev.ShippingFee),
		"tax":             money(ev.Tax),
		"total":           money(ev.Total),
		"fulfillmentNote": note,
	}

	msg := domain.Message{
		To:      ev.CustomerEmail,
		ToName:  ev.CustomerName,
		Subject: s.tpl.RenderSubject(data),
		HTML:    s.tpl.Render(data),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation for order %s: %w", ev.OrderID, err)
	}
	s.log.Info("order confirmation sent", "order_id", ev.OrderID, "number", ev.Number)
	return nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
