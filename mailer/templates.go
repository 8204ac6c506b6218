package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"storefront/api/models"
)

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"mul": func(q int, p float64) float64 { return float64(q) * p },
	"orNA": func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	},
}).Parse(`
{{define "contact"}}
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2>New Contact Request</h2>
  <table>
    <tr><td><b>Name:</b></td><td>{{.Name}}</td></tr>
    <tr><td><b>Email:</b></td><td>{{.Email}}</td></tr>
    <tr><td><b>Subject:</b></td><td>{{.Subject}}</td></tr>
    <tr><td valign="top"><b>Message:</b></td><td>{{.Message}}</td></tr>
  </table>
  <p style="font-size: 12px; color: #888;">Sent via the website contact form. &copy; {{.Year}}</p>
</div>
{{end}}

{{define "autoreply"}}
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2>Thank You for Contacting Us</h2>
  <p>Hi <b>{{.Name}}</b>, we have received your message and our team will get back to you shortly.</p>
  <div style="background: #f9f9f9; border-left: 4px solid #4CAF50; padding: 15px;">
    <p><b>Your Message:</b></p>
    <p>{{.Message}}</p>
  </div>
  <p style="font-size: 12px; color: #888;">This is an automated response. Please do not reply directly to this email. &copy; {{.Year}}</p>
</div>
{{end}}

{{define "otp"}}
<p>Your OTP is <strong>{{.Code}}</strong>. It expires in {{.Minutes}} minute(s).</p>
{{end}}

{{define "query"}}
<div style="font-family: Arial, sans-serif; padding: 20px;">
  <h2>New Query Received</h2>
  <h3>Customer Details</h3>
  <table>
    <tr><td><b>Name:</b></td><td>{{.Customer.Name}}</td></tr>
    <tr><td><b>Email:</b></td><td>{{.Customer.Email}}</td></tr>
    <tr><td><b>Phone:</b></td><td>{{.Customer.Phone}}</td></tr>
    <tr><td><b>Address:</b></td><td>{{.Customer.Address}}</td></tr>
  </table>
  <h3>Order Details</h3>
  <table>
  {{range .Order.Items}}
    <tr>
      <td><img src="{{.Thumbnail}}" width="70" height="70"/></td>
      <td>
        <b>{{.ProductName}}</b><br/>
        Size: {{orNA .Size}} | Color: {{orNA .Color}}<br/>
        Qty: {{.Quantity}} x {{printf "%.2f" .Price}}<br/>
        <b>Total: {{printf "%.2f" (mul .Quantity .Price)}}</b>
      </td>
    </tr>
  {{end}}
  </table>
  <h3>Summary</h3>
  <p><b>Total Amount:</b> {{printf "%.2f" .Order.TotalAmount}}</p>
  <p><b>Item Count:</b> {{.Order.ItemCount}}</p>
  <p><b>Message:</b> {{orNA .AdditionalMessage}}</p>
  <p style="font-size: 12px; color: #777;"><i>Submitted at: {{.Timestamp.Format "2006-01-02 15:04:05 MST"}}</i></p>
</div>
{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s mail: %w", name, err)
	}
	return buf.String(), nil
}

// ContactNotice is the copy of a contact form submission sent to the company inbox.
func ContactNotice(inbox string, req models.ContactRequest) (Message, error) {
	body, err := render("contact", struct {
		models.ContactRequest
		Year int
	}{req, time.Now().Year()})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       inbox,
		ReplyTo:  req.Email,
		Subject:  "Contact Form: " + req.Subject,
		HTMLBody: body,
	}, nil
}

func ContactAutoReply(req models.ContactRequest) (Message, error) {
	body, err := render("autoreply", struct {
		models.ContactRequest
		Year int
	}{req, time.Now().Year()})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       req.Email,
		Subject:  "We received your message: " + req.Subject,
		HTMLBody: body,
	}, nil
}

func OTPMail(to, code string, ttl time.Duration) (Message, error) {
	minutes := int(ttl / time.Minute)
	body, err := render("otp", struct {
		Code    string
		Minutes int
	}{code, minutes})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		Subject:  "Your OTP Code",
		TextBody: fmt.Sprintf("Your OTP is %s. It expires in %d minute(s).", code, minutes),
		HTMLBody: body,
	}, nil
}

func QueryNotice(to string, q *models.Query) (Message, error) {
	body, err := render("query", q)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       to,
		ReplyTo:  q.Customer.Email,
		Subject:  "New Order Query from " + q.Customer.Name,
		HTMLBody: body,
	}, nil
}
