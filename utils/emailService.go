package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"edutrack/models"
)

// NoExpiryLabel is shown in place of an expiration date for certificates
// that never expire.
const NoExpiryLabel = "Tidak ada"

// RenderedEmail is a subject and HTML body ready for delivery.
type RenderedEmail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type certificateEmailData struct {
	Brand             string
	UserName          string
	TrainingName      string
	CertificateNumber string
	IssuedDate        string
	ExpiredDate       string
	Link              string
}

var certificateEmailTmpl = template.Must(template.New("certificate").Parse(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
		.content { padding: 32px 28px; color: #1F2937; line-height: 1.6; font-size: 14px; }
		.footer { background-color: #F6F6F6; padding: 16px; text-align: center; font-size: 12px; color: #666666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="content">
			<p>Hello {{.UserName}},</p>
			<p>Congratulations! You have successfully completed the <strong>{{.TrainingName}}</strong> training.</p>
			<p>Here are the details of your certificate:</p>
			<table cellpadding="4" cellspacing="0">
				<tr><td><strong>Participant Name</strong></td><td>:</td><td>{{.UserName}}</td></tr>
				<tr><td><strong>Training</strong></td><td>:</td><td>{{.TrainingName}}</td></tr>
				<tr><td><strong>Certificate Number</strong></td><td>:</td><td>{{.CertificateNumber}}</td></tr>
				<tr><td><strong>Issued Date</strong></td><td>:</td><td>{{.IssuedDate}}</td></tr>
				<tr><td><strong>Expiration Date</strong></td><td>:</td><td>{{.ExpiredDate}}</td></tr>
			</table>
			<p>You can download your certificate via the following link:<br/>
			<a href="{{.Link}}">{{.Link}}</a></p>
			<p>Thank you for your participation.</p>
			<p>Warm regards,<br/>{{.Brand}}</p>
		</div>
		<div class="footer">&copy; {{.Brand}}</div>
	</div>
</body>
</html>
`))

// RenderCertificateEmail builds the "certificate issued" message for ev. Dates
// are printed as YYYY-MM-DD.
func RenderCertificateEmail(ev models.CertificateIssued, baseURL, brand string) (RenderedEmail, error) {
	data := certificateEmailData{
		Brand:             brand,
		UserName:          ev.ParticipantName,
		TrainingName:      ev.TrainingName,
		CertificateNumber: ev.CertificateNumber,
		IssuedDate:        ev.IssuedDate.Format("2006-01-02"),
		ExpiredDate:       NoExpiryLabel,
		Link:              strings.TrimRight(baseURL, "/") + "/" + ev.CertificateNumber,
	}
	if ev.ExpiredDate != nil {
		data.ExpiredDate = ev.ExpiredDate.Format("2006-01-02")
	}

	var buf bytes.Buffer
	if err := certificateEmailTmpl.Execute(&buf, data); err != nil {
		return RenderedEmail{}, fmt.Errorf("render certificate email: %w", err)
	}
	return RenderedEmail{
		To:      ev.Email,
		Subject: fmt.Sprintf("Your Certificate for %s is Ready!", ev.TrainingName),
		HTML:    buf.String(),
	}, nil
}
