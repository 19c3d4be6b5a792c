// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"text/template"
)

const systemPrompt = "You are an assistant who helps researchers read academic papers quickly. Answer with the requested text only."

var translateTmpl = template.Must(template.New("translate").Parse(`Translate the following paper abstract into {{.Language}}. Keep technical terms accurate and do not add commentary.

{{.Abstract}}
`))

var tldrTmpl = template.Must(template.New("tldr").Parse(`Summarize the paper below in {{.Language}} in at most {{.MaxWords}} words. Write one short paragraph that states the problem, the method and the main result.

Title: {{.Title}}
Abstract: {{.Abstract}}
`))

var keywordsTmpl = template.Must(template.New("keywords").Parse(`List up to {{.Max}} keywords that describe the paper below, most important first. Respond with a single comma-separated line.

Title: {{.Title}}
Abstract: {{.Abstract}}
`))

type promptData struct {
	Title    string
	Abstract string
	Language string
	MaxWords int
	Max      int
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
