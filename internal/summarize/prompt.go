// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"text/template"
)

// systemPrompt frames the model as an academic assistant; kept in Chinese
// to match the requested output language.
const systemPrompt = "你是一位学术研究助手，擅长分析和总结学术论文。"

// summaryPromptTmpl instructs the model to return exactly the structured
// shape the pipeline validates: four bounded Chinese text fields plus a
// 1-10 relevance score, JSON only.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`请对以下学术论文进行中文总结。

论文标题: {{.Title}}
论文摘要: {{.Abstract}}

请按以下 JSON 格式输出:
{
    "summary": "一句话总结（50字以内）",
    "background": "研究背景（100字以内）",
    "method": "核心方法（100字以内）",
    "results": "主要结果（100字以内）",
    "relevance_score": 7.5
}

要求:
1. summary 控制在 50 字以内，概括核心贡献
2. background、method、results 每部分 100 字以内
3. relevance_score 为 1.0 到 10.0 之间的数字，表示论文与机器学习研究的相关程度
4. 只输出 JSON，不要有其他内容`))

// renderPrompt executes the summary prompt template.
func renderPrompt(title, abstract string) (string, error) {
	var buf bytes.Buffer
	err := summaryPromptTmpl.Execute(&buf, struct{ Title, Abstract string }{title, abstract})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// summaryPayload is the JSON shape the prompt requests.
type summaryPayload struct {
	Summary        string  `json:"summary"`
	Background     string  `json:"background"`
	Method         string  `json:"method"`
	Results        string  `json:"results"`
	RelevanceScore float64 `json:"relevance_score"`
}
