package delivery

import (
	"context"
	"fmt"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/module/order"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EmailResolver maps a registered user id to their address.
type EmailResolver interface {
	GetEmail(ctx context.Context, id uuid.UUID) string
}

// OrderFlagStore records delivery progress on the order.
type OrderFlagStore interface {
	MarkEmailSent(ctx context.Context, id uuid.UUID) error
}

// Notifier sends the post-payment order confirmation with the download
// link and access password. It is invoked by the reconciliation
// pipeline only on a genuine transition to completed; a send failure is
// reported to the caller but the order stays completed, with the
// email-sent flag left unset for a manual resend.
type Notifier struct {
	sender  EmailSender
	emails  EmailResolver
	flags   OrderFlagStore
	baseURL string
	logger  *zap.Logger
}

// NewNotifier creates a new order confirmation notifier.
func NewNotifier(sender EmailSender, emails EmailResolver, flags OrderFlagStore, baseURL string, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		emails:  emails,
		flags:   flags,
		baseURL: baseURL,
		logger:  logger,
	}
}

// SendOrderConfirmation renders and sends the confirmation email.
func (n *Notifier) SendOrderConfirmation(ctx context.Context, o *order.Order) error {
	to := o.GuestEmail
	if o.UserID != nil {
		if email := n.emails.GetEmail(ctx, *o.UserID); email != "" {
			to = email
		}
	}
	if to == "" {
		return fmt.Errorf("order %s has no recipient address", o.ID)
	}

	name := o.GuestName
	if name == "" {
		name = "there"
	}

	type lineItem struct {
		Title    string
		Quantity int64
		Amount   string
	}
	items := make([]lineItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, lineItem{
			Title:    item.Title,
			Quantity: item.Quantity,
			Amount:   formatPaise(item.Amount),
		})
	}

	body, err := renderTemplate(orderConfirmationTemplate, map[string]interface{}{
		"Name":        name,
		"OrderNo":     o.OrderNo,
		"PurchaseID":  o.PurchaseID,
		"Items":       items,
		"Total":       formatPaise(o.TotalAmount),
		"DownloadURL": fmt.Sprintf("%s/download/%s", n.baseURL, o.PurchaseID),
		"Password":    o.DownloadPassword,
	})
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	subject := fmt.Sprintf("Your order %s is ready", o.OrderNo)
	if err := n.sender.Send(ctx, to, subject, body); err != nil {
		return err
	}

	if err := n.flags.MarkEmailSent(ctx, o.ID); err != nil {
		n.logger.Error("failed to flag email sent",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
	}
	return nil
}

func formatPaise(amount int64) string {
	return fmt.Sprintf("₹%d.%02d", amount/100, amount%100)
}

const orderConfirmationTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #4F46E5; color: white; text-decoration: none; border-radius: 6px; }
        .password { font-family: monospace; font-size: 18px; background: #f4f4f5; padding: 8px 12px; border-radius: 4px; }
        table { width: 100%; border-collapse: collapse; }
        td { padding: 6px 0; border-bottom: 1px solid #eee; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Thanks for your purchase!</h1>
        <p>Hi {{.Name}},</p>
        <p>Your payment for order <strong>{{.OrderNo}}</strong> is confirmed.</p>
        <table>
            {{range .Items}}<tr><td>{{.Title}} × {{.Quantity}}</td><td align="right">{{.Amount}}</td></tr>{{end}}
            <tr><td><strong>Total</strong></td><td align="right"><strong>{{.Total}}</strong></td></tr>
        </table>
        <p>Download your prompt packs here:</p>
        <p><a href="{{.DownloadURL}}" class="button">Download</a></p>
        <p>Access password: <span class="password">{{.Password}}</span></p>
        <p>Download links are valid for 24 hours after each request.</p>
        <div class="footer">
            <p>Keep your purchase reference {{.PurchaseID}} handy if you need support.</p>
        </div>
    </div>
</body>
</html>
`
