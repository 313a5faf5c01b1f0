// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strings"
	"text/template"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

var markdownTmpl = template.Must(template.New("markdown").Parse(`# 学术周报 - {{.Date}}
{{if .Papers}}
本周共处理 **{{len .Papers}}** 篇论文
{{range .Papers}}
### {{.Index}}. [{{.Title}}]({{.URL}})
{{if .Authors}}
**作者**: {{.Authors}}
{{end}}{{if .Year}}
**年份**: {{.Year}}
{{end}}{{if .OneLine}}
📋 **一句话总结**: {{.OneLine}}
{{end}}{{if .Background}}
🔍 **研究背景**: {{.Background}}
{{end}}{{if .Method}}
💡 **核心方法**: {{.Method}}
{{end}}{{if .Results}}
📊 **主要结果**: {{.Results}}
{{end}}{{if .Score}}
⭐ **相关度评分**: {{.Score}}/10
{{end}}{{end}}{{else}}
本周没有新论文需要处理。
{{end}}{{if .LowRelevance}}
另有 {{.LowRelevance}} 篇论文相关度较低，未列入本报告。
{{end}}{{if .Failures}}
## 处理失败

{{range .Failures}}- {{.IdentityKey}}: {{.Detail}}
{{end}}{{end}}
---

*此报告由 Gmail Scholar Summary 自动生成*
`))

// Markdown renders the Markdown digest.
func (g *Generator) Markdown(res *types.PipelineResult) (string, error) {
	var sb strings.Builder
	if err := markdownTmpl.Execute(&sb, g.view(res)); err != nil {
		return "", err
	}
	return sb.String(), nil
}
