package notification

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/iho/gofunds/internal/domain"
)

const (
	subscriptionSubject = "Fund Subscription Confirmation"
	cancellationSubject = "Fund Subscription Cancellation Confirmation"
	timestampLayout     = "2006-01-02 15:04:05"
)

var printer = message.NewPrinter(language.English)

// Message is a rendered notification ready for a channel.
type Message struct {
	Subject string
	Body    string
	SMS     string
}

// formatAmount renders an amount with thousands separators and two decimals, e.g. $1,250,000.00 COP.
func formatAmount(n domain.Notification) string {
	f, _ := n.Amount.Round(2).Float64()
	return printer.Sprintf("$%.2f COP", f)
}

func subscriptionMessage(n domain.Notification) Message {
	amount := formatAmount(n)
	body := fmt.Sprintf(`
Dear %s,

Your subscription to %s has been confirmed successfully.

Subscription Details:
- Fund: %s
- Amount: %s
- Date: %s UTC

Thank you for choosing our investment platform.

Best regards,
CeibaFunds Team
`, n.CustomerName, n.FundName, n.FundName, amount, n.OccurredAt.UTC().Format(timestampLayout))

	return Message{
		Subject: subscriptionSubject,
		Body:    body,
		SMS: fmt.Sprintf("CeibaFunds: Your subscription to %s for %s has been confirmed. Reference: %s",
			n.FundName, amount, n.Reference),
	}
}

func cancellationMessage(n domain.Notification) Message {
	amount := formatAmount(n)
	body := fmt.Sprintf(`
Dear %s,

Your subscription to %s has been cancelled successfully.

Cancellation Details:
- Fund: %s
- Refund Amount: %s
- Date: %s UTC

The refund has been credited to your account balance.

If you have any questions, please contact our support team.

Best regards,
CeibaFunds Team
`, n.CustomerName, n.FundName, n.FundName, amount, n.OccurredAt.UTC().Format(timestampLayout))

	return Message{
		Subject: cancellationSubject,
		Body:    body,
		SMS: fmt.Sprintf("CeibaFunds: Your %s subscription has been cancelled. Refund of %s processed. Reference: %s",
			n.FundName, amount, n.Reference),
	}
}
