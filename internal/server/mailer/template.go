package mailer

import (
	"bytes"
	"html/template"
)

const verificationSubject = "Email Verification"

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Email Verification</title>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; text-align: center; padding: 20px; }
        .container { background: white; padding: 20px; border-radius: 8px; box-shadow: 0 0 10px rgba(0, 0, 0, 0.1); display: inline-block; }
        .button { display: inline-block; padding: 10px 20px; font-size: 16px; color: white; background-color: #007bff; text-decoration: none; border-radius: 5px; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Email Verification</h2>
        <p>Hi {{.Username}}, click the button below to verify your email address:</p>
        <a href="{{.Link}}" class="button">Verify Email</a>
        <p>If you did not request this, you can safely ignore this email.</p>
    </div>
</body>
</html>
`))

type verificationData struct {
	Username string
	Link     string
}

func renderVerification(username, link string) ([]byte, error) {
	var buf bytes.Buffer
	if err := verificationTemplate.Execute(&buf, verificationData{Username: username, Link: link}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
