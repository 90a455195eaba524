package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// OrderApprovedData feeds the approval email template.
type OrderApprovedData struct {
	OrderCode   string
	EventName   string
	EventDate   string
	Venue       string
	TicketCount int
	TotalAmount float64
}

// TicketAttachment is one QR PNG attached to the approval email.
type TicketAttachment struct {
	TicketCode string
	PNG        []byte
}

var orderApprovedTmpl = template.Must(template.New("order_approved").Parse(`
<h2>Your tickets for {{.EventName}} are ready</h2>
<p>Order <b>#{{.OrderCode}}</b> has been approved by the organizer.</p>
<p>{{.EventDate}} at {{.Venue}}</p>
<p>{{.TicketCount}} ticket(s), total {{.TotalAmount}}. Each QR code attached below admits one person once.</p>
`))

// SendOrderApprovedEmail delivers the buyer's credentials after approval.
// Runs async and best-effort: a delivery failure never rolls back the
// approval, the credential endpoint can always reissue.
func SendOrderApprovedEmail(to string, data OrderApprovedData, attachments []TicketAttachment) {
	go func() {
		var body bytes.Buffer
		if err := orderApprovedTmpl.Execute(&body, data); err != nil {
			log.Printf("render approval email for %s: %v", data.OrderCode, err)
			return
		}

		m := gomail.NewMessage()
		m.SetHeader("From", os.Getenv("SMTP_FROM"))
		m.SetHeader("To", to)
		m.SetHeader("Subject", "Order approved #"+data.OrderCode)
		m.SetBody("text/html", body.String())

		for _, att := range attachments {
			filename := fmt.Sprintf("ticket_%s.png", att.TicketCode)
			png := att.PNG
			m.Attach(filename, gomail.Rename(filename), gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(png))
				return err
			}))
		}

		port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
		if port == 0 {
			port = 587
		}
		d := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
		if err := d.DialAndSend(m); err != nil {
			log.Printf("send approval email for %s: %v", data.OrderCode, err)
		}
	}()
}
