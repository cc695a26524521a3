package notification

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

type Kind string

const (
	KindAssigned    Kind = "assigned"
	KindReminder    Kind = "reminder"
	KindRemark      Kind = "remark"
	KindCompleted   Kind = "completed"
	KindCertificate Kind = "certificate"
)

// Data is everything a template may reference.
type Data struct {
	Institute      string
	StudentName    string
	Course         string
	TaskTitle      string
	Description    string
	DueDate        string
	Link           string
	Remark         string
	CertificateID  string
	CertificateURL string
}

type Message struct {
	Subject string
	HTML    string
	Text    string
}

type kindTemplate struct {
	subject *texttemplate.Template
	heading string
	html    *template.Template
	text    *texttemplate.Template
}

const layout = `<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
		.header { background-color: #1B3A5C; padding: 30px; text-align: center; }
		.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; letter-spacing: 1px; }
		.content { padding: 40px 30px; color: #1B3A5C; line-height: 1.6; }
		.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		.btn { display: inline-block; padding: 12px 24px; background-color: #2E86AB; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
		.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #2E86AB; margin: 20px 0; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>{{.Institute}}</h1></div>
		<div class="content">
			<h2>{{.Heading}}</h2>
			{{.Body}}
		</div>
		<div class="footer">This is an automated message from {{.Institute}}.</div>
	</div>
</body>
</html>`

var layoutTmpl = template.Must(template.New("layout").Parse(layout))

var kinds = map[Kind]kindTemplate{
	KindAssigned: newKind(
		"New assignment: {{.TaskTitle}}",
		"New Assignment",
		`<p>Dear {{.StudentName}},</p>
<p>A new assignment has been published for <strong>{{.Course}}</strong>.</p>
<div class="info-box"><strong>{{.TaskTitle}}</strong><br>{{.Description}}<br>Due: {{.DueDate}}</div>
<a href="{{.Link}}" class="btn">Open Assignment</a>`,
		`Dear {{.StudentName}},
A new assignment has been published for {{.Course}}: {{.TaskTitle}} (due {{.DueDate}}).
{{.Description}}
Submit here: {{.Link}}`,
	),
	KindReminder: newKind(
		"Reminder: {{.TaskTitle}} is due {{.DueDate}}",
		"Assignment Due Soon",
		`<p>Dear {{.StudentName}},</p>
<p>We have not received your work for <strong>{{.TaskTitle}}</strong> yet. It is due on <strong>{{.DueDate}}</strong>.</p>
<a href="{{.Link}}" class="btn">Submit Now</a>`,
		`Dear {{.StudentName}},
We have not received your work for {{.TaskTitle}} yet. It is due on {{.DueDate}}.
Submit here: {{.Link}}`,
	),
	KindRemark: newKind(
		"Feedback on {{.TaskTitle}}",
		"Your Trainer Left Feedback",
		`<p>Dear {{.StudentName}},</p>
<p>Your trainer reviewed your submission for <strong>{{.TaskTitle}}</strong>:</p>
<div class="info-box"><em>{{.Remark}}</em></div>
<p>Please update your work and upload it again.</p>
<a href="{{.Link}}" class="btn">Resubmit</a>`,
		`Dear {{.StudentName}},
Your trainer reviewed your submission for {{.TaskTitle}}:
"{{.Remark}}"
Resubmit here: {{.Link}}`,
	),
	KindCompleted: newKind(
		"Completed: {{.TaskTitle}}",
		"Assignment Completed",
		`<p>Dear {{.StudentName}},</p>
<p>Your submission for <strong>{{.TaskTitle}}</strong> has been marked as completed. Well done!</p>`,
		`Dear {{.StudentName}},
Your submission for {{.TaskTitle}} has been marked as completed. Well done!`,
	),
	KindCertificate: newKind(
		"Your certificate {{.CertificateID}}",
		"Certificate Issued",
		`<p>Dear {{.StudentName}},</p>
<p>Your course certificate is ready.</p>
<div class="info-box">Certificate number: <strong>{{.CertificateID}}</strong></div>
<p>Keep this number for verification purposes.</p>
<a href="{{.CertificateURL}}" class="btn">Download Certificate</a>`,
		`Dear {{.StudentName}},
Your course certificate is ready. Certificate number: {{.CertificateID}}
Download: {{.CertificateURL}}`,
	),
}

func newKind(subject, heading, html, text string) kindTemplate {
	return kindTemplate{
		subject: texttemplate.Must(texttemplate.New("subject").Parse(subject)),
		heading: heading,
		html:    template.Must(template.New("body").Parse(html)),
		text:    texttemplate.Must(texttemplate.New("text").Parse(text)),
	}
}

// Render builds the message for kind. It has no side effects.
func Render(kind Kind, data Data) (Message, error) {
	kt, ok := kinds[kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}
	if data.Institute == "" {
		data.Institute = "Training Institute"
	}

	subject, err := execText(kt.subject, data)
	if err != nil {
		return Message{}, err
	}
	text, err := execText(kt.text, data)
	if err != nil {
		return Message{}, err
	}

	var body bytes.Buffer
	if err := kt.html.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("render %s body: %w", kind, err)
	}
	var page bytes.Buffer
	err = layoutTmpl.Execute(&page, struct {
		Institute string
		Heading   string
		Body      template.HTML
	}{data.Institute, kt.heading, template.HTML(body.String())}) //nolint:gosec // body is produced by html/template
	if err != nil {
		return Message{}, fmt.Errorf("render %s layout: %w", kind, err)
	}

	return Message{Subject: headerLine(subject), HTML: page.String(), Text: text}, nil
}

func execText(t *texttemplate.Template, data Data) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
