// Package formdata 按 multipart/form-data 格式手工拼装请求体。
// 设备端的安装接口对字段顺序和头部格式敏感，所以这里逐字节控制输出，而不是交给 mime/multipart。
package formdata

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

const (
	// BoundaryPrefix 边界前缀，后接纳秒时间戳
	BoundaryPrefix = "-----------------------------"

	DefaultFileContentType = "application/octet-stream"
)

// FormPart 表单中的一个字段：文本字段或文件字段
type FormPart struct {
	Name string

	// 文本字段
	Value string

	// 文件字段（IsFile 为 true 时生效）
	IsFile      bool
	FileName    string
	ContentType string
	Content     []byte
}

// TextPart 创建文本字段
func TextPart(name, value string) FormPart {
	return FormPart{Name: name, Value: value}
}

// FilePart 创建文件字段
func FilePart(name, fileName, contentType string, content []byte) FormPart {
	return FormPart{
		Name:        name,
		IsFile:      true,
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
	}
}

// Body 编码后的请求体，构建后不再修改
type Body struct {
	Boundary string
	Data     []byte
}

// ContentType 返回对应的 Content-Type 头
func (b *Body) ContentType() string {
	return "multipart/form-data; boundary=" + b.Boundary
}

// Len 请求体字节数，用作 Content-Length
func (b *Body) Len() int {
	return len(b.Data)
}

// NewBoundary 由时间戳生成边界，每次上传都重新生成
func NewBoundary(now time.Time) string {
	return BoundaryPrefix + strconv.FormatInt(now.UnixNano(), 10)
}

// New 编码字段并返回 Body
func New(parts []FormPart, boundary string) *Body {
	return &Body{
		Boundary: boundary,
		Data:     Encode(parts, boundary),
	}
}

// Encode 按顺序编码所有字段，末尾追加结束边界。
// 文件内容原样写入，不做 base64 或转义；不扫描内容检查边界冲突。
func Encode(parts []FormPart, boundary string) []byte {
	var buf bytes.Buffer

	for _, p := range parts {
		if p.IsFile {
			fileName := p.FileName
			if fileName == "" {
				fileName = p.Name
			}
			contentType := p.ContentType
			if contentType == "" {
				contentType = DefaultFileContentType
			}
			fmt.Fprintf(&buf, "--%s\r\nContent-Disposition: form-data; name=\"%s\"; filename=\"%s\"\r\nContent-Type: %s\r\n\r\n",
				boundary, p.Name, fileName, contentType)
			buf.Write(p.Content)
			buf.WriteString("\r\n")
			continue
		}

		fmt.Fprintf(&buf, "--%s\r\nContent-Disposition: form-data; name=\"%s\"\r\n\r\n%s\r\n",
			boundary, p.Name, p.Value)
	}

	fmt.Fprintf(&buf, "\r\n--%s--\r\n", boundary)
	return buf.Bytes()
}
