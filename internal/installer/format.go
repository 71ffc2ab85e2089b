package installer

import (
	"regexp"
	"strings"
)

// StatusMarker 设备响应页面中状态信息所在区域的起始标记
const StatusMarker = "<center>"

var (
	htmlTagPattern  = regexp.MustCompile(`(?s)<.*?>`)
	blankRunPattern = regexp.MustCompile(`\n{2,}`)
)

// FormatResponse 从设备返回的 HTML 中提取可读的状态信息。
// 不含 <center> 时原样返回，避免丢失无法识别的内容。
func FormatResponse(body string) string {
	idx := strings.Index(body, StatusMarker)
	if idx < 0 {
		return body
	}

	text := body[idx+len(StatusMarker):]
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = htmlTagPattern.ReplaceAllString(text, "")
	return blankRunPattern.ReplaceAllString(text, "\n")
}
