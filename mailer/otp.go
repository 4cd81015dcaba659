package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

const OTPSubject = "OTP for your Reals TO Chat authentication"

//go:embed templates/*.html
var templateFS embed.FS

var otpTemplate = template.Must(template.ParseFS(templateFS, "templates/otp.html"))

type otpData struct {
	Name  string
	Email string
	OTP   string
	Year  int
}

// OTPEmail renders the one-time-password email for to.
func OTPEmail(to, name, otp string) (Message, error) {
	if name == "" {
		name = "User"
	}
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, otpData{Name: name, Email: to, OTP: otp, Year: time.Now().Year()})
	if err != nil {
		return Message{}, fmt.Errorf("render otp email: %w", err)
	}
	return Message{To: to, Subject: OTPSubject, HTML: buf.String()}, nil
}
