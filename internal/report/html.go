// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"html/template"
	"strings"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

var htmlTmpl = template.Must(template.New("html").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>学术周报 - {{.Date}}</title>
<style>
body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
    line-height: 1.6;
    max-width: 800px;
    margin: 0 auto;
    padding: 20px;
    color: #333;
}
h1 {
    color: #2c3e50;
    border-bottom: 2px solid #3498db;
    padding-bottom: 10px;
}
.paper {
    background: #f8f9fa;
    border-left: 4px solid #3498db;
    padding: 15px;
    margin: 20px 0;
    border-radius: 4px;
}
.paper h3 {
    margin-top: 0;
    color: #34495e;
}
.paper h3 a {
    color: #2980b9;
    text-decoration: none;
}
.paper h3 a:hover {
    text-decoration: underline;
}
.authors {
    color: #666;
    font-style: italic;
}
.meta {
    color: #888;
    font-size: 0.9em;
}
.score {
    color: #e74c3c;
    font-weight: bold;
}
.summary {
    font-size: 1.1em;
    margin: 20px 0;
}
.failures {
    color: #999;
    font-size: 0.9em;
}
.footer {
    color: #999;
    font-size: 0.9em;
    text-align: center;
    margin-top: 40px;
}
</style>
</head>
<body>
<h1>学术周报 - {{.Date}}</h1>
{{if .Papers}}<p class="summary">本周共处理 <strong>{{len .Papers}}</strong> 篇论文</p>
<div class="papers">
{{range .Papers}}<div class="paper">
<h3>{{.Index}}. <a href="{{.URL}}">{{.Title}}</a></h3>
{{if .Authors}}<p class="authors"><strong>作者:</strong> {{.Authors}}</p>
{{end}}{{if .Year}}<p class="meta"><strong>年份:</strong> {{.Year}}</p>
{{end}}{{if .OneLine}}<p class="summary">📋 <strong>一句话总结:</strong> {{.OneLine}}</p>
{{end}}{{if .Background}}<p class="background">🔍 <strong>研究背景:</strong> {{.Background}}</p>
{{end}}{{if .Method}}<p class="method">💡 <strong>核心方法:</strong> {{.Method}}</p>
{{end}}{{if .Results}}<p class="results">📊 <strong>主要结果:</strong> {{.Results}}</p>
{{end}}{{if .Score}}<p class="score">⭐ <strong>相关度评分:</strong> {{.Score}}/10</p>
{{end}}</div>
{{end}}</div>
{{else}}<p class="summary">本周没有新论文需要处理。</p>
{{end}}{{if .LowRelevance}}<p class="meta">另有 {{.LowRelevance}} 篇论文相关度较低，未列入本报告。</p>
{{end}}{{if .Failures}}<div class="failures">
<h2>处理失败</h2>
<ul>
{{range .Failures}}<li>{{.IdentityKey}}: {{.Detail}}</li>
{{end}}</ul>
</div>
{{end}}<hr>
<p class="footer">此报告由 Gmail Scholar Summary 自动生成</p>
</body>
</html>
`))

// HTML renders the digest as an escaped standalone page, suitable for a
// text/html mail body.
func (g *Generator) HTML(res *types.PipelineResult) (string, error) {
	var sb strings.Builder
	if err := htmlTmpl.Execute(&sb, g.view(res)); err != nil {
		return "", err
	}
	return sb.String(), nil
}
