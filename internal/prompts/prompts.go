// Package prompts provides the system and user prompts for each writing stage.
package prompts

import "fmt"

// Literal headers the outline response is split on.
const (
	OutlineHeader       = "大纲："
	WritingPromptHeader = "写作提示："
)

// OutlineSystemPrompt frames the model as an outline planner.
const OutlineSystemPrompt = `你是一个专业的文章大纲规划专家。你需要基于参考文本生成一个结构清晰的博客大纲，并为每个部分提供写作建议。`

// ContentSystemPrompt frames the model as a section writer.
const ContentSystemPrompt = `你是一个专业的内容写作专家，擅长以严谨和通俗易懂的方式写微信公众号和知乎的博客。你需要基于大纲、参考文本和写作提示生成高质量的内容。`

// PolishSystemPrompt frames the model as a reviewing editor.
const PolishSystemPrompt = `你是一个顶级的公众号大V，擅长写文章和审稿。你需要对内容进行审阅和润色，提升其可读性和专业性和严谨性，降低重复度，但保持原有的核心信息不变。`

// OutlineUserPrompt asks for two numbered lists under OutlineHeader and
// WritingPromptHeader.
func OutlineUserPrompt(style, referenceText string) string {
	return fmt.Sprintf(`请基于以下参考文本生成一个博客大纲，并为每个部分提供详细的写作提示：
风格选择：
%s

参考文本：
%s

请按照以下格式输出：
%s
1. [大纲标题1]
2. [大纲标题2]
...

%s
1. [对应大纲1的写作提示]
2. [对应大纲2的写作提示]
...
`, style, referenceText, OutlineHeader, WritingPromptHeader)
}

// ContentUserPrompt asks for the body of one section.
func ContentUserPrompt(sectionTitle, referenceText, writingPrompt string) string {
	return fmt.Sprintf(`请基于以下信息生成内容：

大纲部分：%s

参考文本：
%s

写作提示：
%s

请生成这个部分的详细内容，确保内容与大纲主题相关，并充分利用参考文本的信息。
`, sectionTitle, referenceText, writingPrompt)
}

// PolishUserPrompt asks for a corrected and polished version of the current
// section, given the already polished sections before it.
func PolishUserPrompt(priorContext, sectionDraft, referenceText string) string {
	return fmt.Sprintf(`参考【参考文本】先对【当前章节】进行修改，删除逻辑性和事实不符类错误；然后请结合【全文章节】对【当前章节】进行润色，提升其表达质量：

【参考文本】
%s

【全文章节】
%s

【当前章节】
%s

请注意：
1. 保持原有的核心信息不变
2. 提升语言的流畅性和专业性
3. 优化段落结构和过渡，并去除冗余的地方
4. 确保内容的连贯性和逻辑性
5. 给上插图建议，在每个段落后面给上建议插图，用（）括起来
6. 检查生成文本的相对【参考文本】的准确度，并基于【参考文本】来进行修正
`, referenceText, priorContext, sectionDraft)
}
