package browser

import (
	"html/template"
	"strings"
)

// Doc is a complete HTML document plus the URL relative references resolve
// against.
type Doc struct {
	BaseURL string
	HTML    string
}

var docTmpl = template.Must(template.New("doc").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<base href="{{.Base}}">
<style>html,body{margin:0;padding:16px;background:#fff}</style>
</head>
<body>{{.Body}}</body>
</html>`))

// Document wraps a rendered signature fragment. body is trusted markup
// produced by the template renderers.
func Document(baseURL, body string) Doc {
	var b strings.Builder
	_ = docTmpl.Execute(&b, struct {
		Base string
		Body template.HTML
	}{Base: baseURL, Body: template.HTML(body)})
	return Doc{BaseURL: baseURL, HTML: b.String()}
}
