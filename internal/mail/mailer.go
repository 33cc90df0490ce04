// Package mail sends donation receipt emails over SMTP. Receipts are a
// best-effort side effect of verification: callers log failures and move on,
// so nothing in this package retries or escalates.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	gomail "gopkg.in/gomail.v2"
)

// Receipt is everything needed to render and address one receipt email.
type Receipt struct {
	To        string
	DonorName string
	Reference string
	Currency  string
	Amount    int64 // minor currency units as verified by the gateway
}

// Mailer is the send-one-message capability the donation service depends on.
type Mailer interface {
	SendReceipt(ctx context.Context, r Receipt) error
}

// receiptTmpl renders the HTML body. Donor-provided values pass through
// html/template escaping.
var receiptTmpl = template.Must(template.New("receipt").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; color: #333; line-height: 1.6;">
    <h1 style="color: #7c28c5;">Thank You for Your Donation</h1>
    <p>Dear {{.DonorName}},</p>
    <p>We are writing to confirm that we have received your generous donation of <strong>{{.Currency}} {{.AmountDisplay}}</strong>.</p>
    <p>Your transaction reference is: <strong>{{.Reference}}</strong></p>
    <p>Your contribution is invaluable to us and will go a long way in supporting the ministry and spreading the gospel. We pray that God blesses you abundantly for your faithfulness.</p>
    <br/>
    <p>With gratitude,<br/>The VOSEM International Team</p>
</div>
`))

// amountPrinter groups digits for display (1,000,000 style).
var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders a minor-unit amount in major units with grouped
// thousands, e.g. 1000000 -> "10,000.00". Display only; stored amounts stay
// in minor units.
func FormatAmount(minor int64) string {
	major := minor / 100
	cents := minor % 100
	if cents < 0 {
		cents = -cents
	}
	return amountPrinter.Sprintf("%d", major) + fmt.Sprintf(".%02d", cents)
}

// RenderReceiptHTML produces the receipt email body for r.
func RenderReceiptHTML(r Receipt) (string, error) {
	var buf bytes.Buffer
	err := receiptTmpl.Execute(&buf, struct {
		Receipt
		AmountDisplay string
	}{Receipt: r, AmountDisplay: FormatAmount(r.Amount)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ReceiptSubject is the fixed subject line for donation receipts.
const ReceiptSubject = "Thank You For Your Generous Giving"

// SMTPMailer sends receipts through an SMTP relay via gomail.
type SMTPMailer struct {
	from string

	// send is the transport; a seam so tests can capture messages without
	// a live relay.
	send func(m *gomail.Message) error
}

// NewSMTP constructs an SMTPMailer for the given relay settings. from is the
// display sender, e.g. "VOSEM INT'L Finance <finance@vosem.org>".
func NewSMTP(host string, port int, username, password, from string) *SMTPMailer {
	d := gomail.NewDialer(host, port, username, password)
	return &SMTPMailer{
		from: from,
		// DialAndSend is variadic; the seam takes a single message.
		send: func(m *gomail.Message) error { return d.DialAndSend(m) },
	}
}

// SendReceipt renders and sends one receipt. The SMTP dial has no context
// plumbing in gomail, so cancellation is only checked up front.
func (m *SMTPMailer) SendReceipt(ctx context.Context, r Receipt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := RenderReceiptHTML(r)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", r.To)
	msg.SetHeader("Subject", ReceiptSubject)
	msg.SetBody("text/html", body)

	return m.send(msg)
}
