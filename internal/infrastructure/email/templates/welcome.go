// Package templates provides email template rendering
package templates

import (
	"bytes"
	"html/template"
	"log"
)

// WelcomeEmailProps fills the welcome email body.
type WelcomeEmailProps struct {
	DisplayName string
	AppName     string
}

var welcomeTemplate = template.Must(template.New("welcomeEmail").Parse(`
  <div style="font-family: Helvetica, sans-serif; font-size: 16px; color: #333333; line-height: 1.5;">
    <p style="margin: 0 0 16px;">Hi {{if .DisplayName}}{{.DisplayName}}{{else}}there{{end}},</p>
    <p style="margin: 0 0 16px;">Welcome to {{.AppName}}! Your profile has been created and your preferences are ready to customize.</p>
    <p style="margin: 0 0 16px;">You can change your theme and notification settings any time from your profile page.</p>
    <p style="margin: 0;">&mdash; The {{.AppName}} team</p>
  </div>`))

// GetWelcomeEmailContent renders the welcome email body HTML.
func GetWelcomeEmailContent(props WelcomeEmailProps) string {
	if props.AppName == "" {
		props.AppName = "ProfileStack"
	}

	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, props); err != nil {
		log.Printf("ERROR: failed to render welcome email template: %v", err)
		return ""
	}
	return buf.String()
}

// EmailLayoutProps fills the shared email layout.
type EmailLayoutProps struct {
	Preheader string
	Content   string
}

type emailLayoutData struct {
	Preheader string
	Content   template.HTML
}

var layoutTemplate = template.Must(template.New("emailLayout").Parse(`<!doctype html>
<html>
  <head>
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
  </head>
  <body style="background-color: #f6f6f6; margin: 0; padding: 0;">
    <span style="display: none; max-height: 0; overflow: hidden;">{{.Preheader}}</span>
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" width="100%" style="background-color: #f6f6f6;">
      <tr>
        <td>&nbsp;</td>
        <td style="display: block; max-width: 580px; margin: 0 auto; padding: 24px;">
          <div style="background: #ffffff; border-radius: 4px; padding: 24px;">{{.Content}}</div>
        </td>
        <td>&nbsp;</td>
      </tr>
    </table>
  </body>
</html>`))

// GetEmailLayout wraps rendered content in the shared HTML shell.
func GetEmailLayout(props EmailLayoutProps) string {
	var buf bytes.Buffer
	err := layoutTemplate.Execute(&buf, emailLayoutData{
		Preheader: props.Preheader,
		Content:   template.HTML(props.Content),
	})
	if err != nil {
		log.Printf("ERROR: failed to render email layout: %v", err)
		return props.Content
	}
	return buf.String()
}
