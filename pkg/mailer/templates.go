package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"hris-auth/internal/data/entity"
)

type codeEmail struct {
	Subject string
	Heading string
	Intro   string
}

var codeEmails = map[entity.CodePurpose]codeEmail{
	entity.CodePurposeLogin: {
		Subject: "Your HRIS login verification code",
		Heading: "Login verification",
		Intro:   "Use the code below to finish signing in to the HRIS.",
	},
	entity.CodePurposePasswordReset: {
		Subject: "Your HRIS password reset code",
		Heading: "Password reset",
		Intro:   "We received a request to reset your HRIS password. Use the code below to continue.",
	},
	entity.CodePurposePasswordChange: {
		Subject: "Your HRIS password change code",
		Heading: "Password change",
		Intro:   "Use the code below to confirm the change of your HRIS password.",
	},
}

var codeTemplate = template.Must(template.New("code").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Heading}}</title></head>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2>{{.Heading}}</h2>
  <p>{{.Intro}}</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 6px;">{{.Code}}</p>
  <p>The code expires in {{.ValidFor}}. If you did not request it, you can ignore this email.</p>
  <p style="font-size: 12px; color: #777;">&copy; {{.Year}} Human Resource Information System</p>
</body>
</html>
`))

// renderCode returns subject, HTML body and plain-text body for a code email.
func renderCode(purpose entity.CodePurpose, code string, validFor time.Duration) (string, string, string, error) {
	email, ok := codeEmails[purpose]
	if !ok {
		return "", "", "", fmt.Errorf("unknown code purpose %q", purpose)
	}

	data := struct {
		codeEmail
		Code     string
		ValidFor string
		Year     int
	}{
		codeEmail: email,
		Code:      code,
		ValidFor:  validFor.String(),
		Year:      time.Now().Year(),
	}

	var body bytes.Buffer
	if err := codeTemplate.Execute(&body, data); err != nil {
		return "", "", "", fmt.Errorf("execute code template: %w", err)
	}

	text := fmt.Sprintf("%s\n\nYour code is %s. It expires in %s.\n", email.Intro, code, data.ValidFor)
	return email.Subject, body.String(), text, nil
}
