package notifications

import (
	"bytes"
	"fmt"
	"html/template"
)

// The shared wrapper mirrors the site's brand styling. Field values are
// injected through html/template so user input is always escaped.
const emailStyle = `
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background-color: #24355A; color: white; padding: 20px; border-radius: 8px 8px 0 0; }
    .content { background-color: #f8f9fa; padding: 20px; border-radius: 0 0 8px 8px; }
    .field { margin-bottom: 15px; }
    .label { font-weight: bold; color: #24355A; }
    .value { margin-top: 5px; }
    .footer { margin-top: 20px; font-size: 12px; color: #666; }`

const bookingEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <style>` + emailStyle + `
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h2>New Booking Request</h2>
    </div>
    <div class="content">
      <div class="field">
        <div class="label">Name:</div>
        <div class="value">{{.Name}}</div>
      </div>
      <div class="field">
        <div class="label">Phone:</div>
        <div class="value">{{.Phone}}</div>
      </div>
      <div class="field">
        <div class="label">Email:</div>
        <div class="value">{{.Email}}</div>
      </div>
      <div class="field">
        <div class="label">Preferred Training Times:</div>
        <div class="value">{{.PreferredTimes}}</div>
      </div>
      {{if .Goals}}<div class="field">
        <div class="label">Goals / Notes:</div>
        <div class="value">{{.Goals}}</div>
      </div>
      {{end}}{{if .ServiceName}}<div class="field">
        <div class="label">Service:</div>
        <div class="value">{{.ServiceName}}</div>
      </div>
      {{end}}{{if .AmountPaid}}<div class="field">
        <div class="label">Amount Paid:</div>
        <div class="value">${{.AmountPaid}}</div>
      </div>
      {{end}}{{if .PaymentIntentID}}<div class="field">
        <div class="label">Payment Reference:</div>
        <div class="value">{{.PaymentIntentID}}</div>
      </div>
      {{end}}<div class="footer">
        Submitted on: {{.SubmittedAt}}
      </div>
    </div>
  </div>
</body>
</html>`

const contactEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <style>` + emailStyle + `
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h2>New Contact Inquiry</h2>
    </div>
    <div class="content">
      <div class="field">
        <div class="label">Name:</div>
        <div class="value">{{.Name}}</div>
      </div>
      <div class="field">
        <div class="label">Phone:</div>
        <div class="value">{{.Phone}}</div>
      </div>
      <div class="field">
        <div class="label">Email:</div>
        <div class="value">{{.Email}}</div>
      </div>
      <div class="field">
        <div class="label">Message:</div>
        <div class="value">{{.Query}}</div>
      </div>
      <div class="footer">
        Submitted on: {{.SubmittedAt}}
      </div>
    </div>
  </div>
</body>
</html>`

var (
	bookingEmailTmpl = template.Must(template.New("booking_email").Parse(bookingEmailTemplate))
	contactEmailTmpl = template.Must(template.New("contact_email").Parse(contactEmailTemplate))
)

type BookingEmailData struct {
	Name            string
	Phone           string
	Email           string
	PreferredTimes  string
	Goals           string
	ServiceName     string
	PaymentIntentID string
	AmountPaid      string
	SubmittedAt     string
}

type ContactEmailData struct {
	Name        string
	Phone       string
	Email       string
	Query       string
	SubmittedAt string
}

func BuildBookingEmail(data BookingEmailData) (subject, htmlBody string, err error) {
	subject = fmt.Sprintf("New Booking Request - %s", data.Name)
	var buf bytes.Buffer
	if err := bookingEmailTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

func BuildContactEmail(data ContactEmailData) (subject, htmlBody string, err error) {
	subject = fmt.Sprintf("New Contact Inquiry - %s", data.Name)
	var buf bytes.Buffer
	if err := contactEmailTmpl.Execute(&buf, data); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}
