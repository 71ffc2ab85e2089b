package formdata_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hwuu/rokuloader/internal/formdata"
)

const testBoundary = "-----------------------------638000000000000000"

func installParts(content []byte) []formdata.FormPart {
	return []formdata.FormPart{
		formdata.FilePart("archive", "channel.zip", "application/zip", content),
		formdata.TextPart("mysubmit", "Replace"),
	}
}

func TestEncode_ExactBytes(t *testing.T) {
	payload := []byte{0x50, 0x4B, 0x03, 0x04, 0x00, 0xFF, '\r', '\n'}
	got := formdata.Encode(installParts(payload), testBoundary)

	var want bytes.Buffer
	want.WriteString("--" + testBoundary + "\r\n")
	want.WriteString("Content-Disposition: form-data; name=\"archive\"; filename=\"channel.zip\"\r\n")
	want.WriteString("Content-Type: application/zip\r\n\r\n")
	want.Write(payload)
	want.WriteString("\r\n")
	want.WriteString("--" + testBoundary + "\r\n")
	want.WriteString("Content-Disposition: form-data; name=\"mysubmit\"\r\n\r\n")
	want.WriteString("Replace\r\n")
	want.WriteString("\r\n--" + testBoundary + "--\r\n")

	assert.Equal(t, want.Bytes(), got)
}

func TestEncode_Deterministic(t *testing.T) {
	parts := installParts([]byte("PK\x03\x04data"))
	first := formdata.Encode(parts, testBoundary)
	second := formdata.Encode(parts, testBoundary)
	assert.Equal(t, first, second)
}

func TestEncode_ClosingBoundaryAndDispositions(t *testing.T) {
	body := formdata.Encode(installParts([]byte("PK\x03\x04")), testBoundary)

	assert.True(t, bytes.HasSuffix(body, []byte("--"+testBoundary+"--\r\n")))
	assert.Equal(t, 1, bytes.Count(body, []byte(`Content-Disposition: form-data; name="archive"`)))
	assert.Equal(t, 1, bytes.Count(body, []byte(`Content-Disposition: form-data; name="mysubmit"`)))
}

func TestEncode_PreservesOrder(t *testing.T) {
	parts := []formdata.FormPart{
		formdata.TextPart("z", "1"),
		formdata.TextPart("a", "2"),
		formdata.TextPart("m", "3"),
	}
	body := string(formdata.Encode(parts, testBoundary))

	iz := strings.Index(body, `name="z"`)
	ia := strings.Index(body, `name="a"`)
	im := strings.Index(body, `name="m"`)
	assert.True(t, iz < ia && ia < im, "parts out of order:\n%s", body)
}

func TestEncode_FileDefaults(t *testing.T) {
	parts := []formdata.FormPart{formdata.FilePart("blob", "", "", []byte("x"))}
	body := string(formdata.Encode(parts, testBoundary))

	assert.Contains(t, body, `name="blob"; filename="blob"`)
	assert.Contains(t, body, "Content-Type: "+formdata.DefaultFileContentType+"\r\n")
}

func TestEncode_NoParts(t *testing.T) {
	body := formdata.Encode(nil, testBoundary)
	assert.Equal(t, "\r\n--"+testBoundary+"--\r\n", string(body))
}

// 标准库 multipart reader 能解析输出，且文件内容不被改写
func TestEncode_ReadableByMultipartReader(t *testing.T) {
	payload := []byte("PK\x03\x04\x00\x01binary\r\npayload")
	b := formdata.New(installParts(payload), testBoundary)

	r := multipart.NewReader(bytes.NewReader(b.Data), b.Boundary)

	part, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "archive", part.FormName())
	assert.Equal(t, "channel.zip", part.FileName())
	assert.Equal(t, "application/zip", part.Header.Get("Content-Type"))
	data, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	part, err = r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "mysubmit", part.FormName())
	data, err = io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "Replace", strings.TrimSpace(string(data)))

	_, err = r.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBody_ContentType(t *testing.T) {
	b := formdata.New(installParts([]byte("PK\x03\x04")), testBoundary)
	assert.Equal(t, "multipart/form-data; boundary="+testBoundary, b.ContentType())
	assert.Equal(t, len(b.Data), b.Len())
}

func TestNewBoundary(t *testing.T) {
	now := time.Unix(1700000000, 123456789)
	boundary := formdata.NewBoundary(now)

	assert.Equal(t, formdata.BoundaryPrefix+"1700000000123456789", boundary)
	assert.NotEqual(t, boundary, formdata.NewBoundary(now.Add(time.Nanosecond)))
}
