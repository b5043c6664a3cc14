package notifyhotmatch

import (
	htmltemplate "html/template"
	"strings"
	"text/template"
)

type messageData struct {
	CandidateName string
	JobTitle      string
	Overall       int
	Policy        string
	Reasons       []string
	Risks         []string
	NextAction    string
}

var (
	subjectTmpl = template.Must(template.New("subject").Parse(
		`{{if eq .Policy "hot"}}Hot match{{else}}New match{{end}}: {{.CandidateName}} for {{.JobTitle}} ({{.Overall}})`))

	textTmpl = template.Must(template.New("text").Parse(`{{.CandidateName}} scored {{.Overall}}/100 ({{.Policy}}) for {{.JobTitle}}.
{{if .Reasons}}
Why:
{{range .Reasons}}- {{.}}
{{end}}{{end}}{{if .Risks}}
Watch out:
{{range .Risks}}- {{.}}
{{end}}{{end}}{{if .NextAction}}
Next: {{.NextAction}}
{{end}}`))

	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(`<p><strong>{{.CandidateName}}</strong> scored <strong>{{.Overall}}/100</strong> ({{.Policy}}) for {{.JobTitle}}.</p>
{{if .Reasons}}<p>Why:</p><ul>{{range .Reasons}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .Risks}}<p>Watch out:</p><ul>{{range .Risks}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .NextAction}}<p>Next: {{.NextAction}}</p>{{end}}`))

	smsTmpl = template.Must(template.New("sms").Parse(
		`{{.Policy}} match {{.Overall}}/100: {{.CandidateName}} for {{.JobTitle}}.{{if .NextAction}} {{.NextAction}}{{end}}`))
)

type renderedMessage struct {
	Subject string
	Text    string
	HTML    string
	SMS     string
}

func render(d messageData) (renderedMessage, error) {
	var m renderedMessage
	for _, step := range []struct {
		exec func(*strings.Builder) error
		dst  *string
	}{
		{func(b *strings.Builder) error { return subjectTmpl.Execute(b, d) }, &m.Subject},
		{func(b *strings.Builder) error { return textTmpl.Execute(b, d) }, &m.Text},
		{func(b *strings.Builder) error { return htmlTmpl.Execute(b, d) }, &m.HTML},
		{func(b *strings.Builder) error { return smsTmpl.Execute(b, d) }, &m.SMS},
	} {
		var b strings.Builder
		if err := step.exec(&b); err != nil {
			return m, err
		}
		*step.dst = strings.TrimSpace(b.String())
	}
	return m, nil
}
