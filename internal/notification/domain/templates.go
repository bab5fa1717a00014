package domain

import _ "embed"

//go:embed templates/order_confirmation.html
var orderConfirmationBody string

func OrderConfirmation() Template {
	return Template{
		Subject: "Your Figurine Junction order #{{orderNumber}}",
		Body:    orderConfirmationBody,
	}
}
