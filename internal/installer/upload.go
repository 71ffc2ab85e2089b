package installer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hwuu/rokuloader/internal/formdata"
	"github.com/hwuu/rokuloader/internal/logging"
)

const (
	InstallPath = "/plugin_install"

	// LegacyUserAgent 设备端会按 User-Agent 判断客户端，保持旧浏览器标识
	LegacyUserAgent = "Mozilla/4.0 (MSIE 6.0; Windows NT 5.1)"

	// NoAuthUsername 旧固件不接受认证头，用户名为 none 时不发送 Authorization
	NoAuthUsername = "none"

	ArchiveField       = "archive"
	ArchiveContentType = "application/zip"
	SubmitField        = "mysubmit"
	SubmitValue        = "Replace"

	DefaultUploadTimeout = 2 * time.Minute
)

// Response 设备返回的原始响应
type Response struct {
	StatusCode int
	Body       []byte
}

// Client 向设备的开发者安装接口上传安装包
type Client struct {
	// HTTPClient 为空时按 Timeout 创建；测试可注入自定义 Transport
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     logrus.FieldLogger
	Now        func() time.Time // 生成 boundary 用，测试中固定
}

// InstallURL 校验 host 并拼出安装接口地址
func InstallURL(host string) (*url.URL, error) {
	if host == "" || strings.ContainsAny(host, "/?#@\\ \t\r\n") {
		return nil, fmt.Errorf("%w: hostname %q", ErrInvalidTarget, host)
	}

	u, err := url.Parse("http://" + host + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: hostname %q: %w", ErrInvalidTarget, host, err)
	}
	if u.Host != host || u.Hostname() == "" || u.Path != "/" {
		return nil, fmt.Errorf("%w: hostname %q", ErrInvalidTarget, host)
	}
	// "roku.local:" 能通过 url.Parse，但探测会拨 0 端口而请求走 80 端口
	if u.Port() == "" && strings.HasSuffix(host, ":") {
		return nil, fmt.Errorf("%w: hostname %q has an empty port", ErrInvalidTarget, host)
	}

	u.Path = InstallPath
	return u, nil
}

// InstallParts 构造安装表单：先 archive 文件字段，再 mysubmit=Replace，顺序不可调换
func InstallParts(fileName string, content []byte) []formdata.FormPart {
	return []formdata.FormPart{
		formdata.FilePart(ArchiveField, fileName, ArchiveContentType, content),
		formdata.TextPart(SubmitField, SubmitValue),
	}
}

func (c *Client) httpClient() (*http.Client, error) {
	if c.HTTPClient != nil {
		return c.HTTPClient, nil
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultUploadTimeout
	}

	// 每次上传使用新的 cookie jar
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Timeout: timeout,
		Jar:     jar,
		Transport: &http.Transport{
			Proxy:             http.ProxyFromEnvironment,
			DisableKeepAlives: true,
		},
	}, nil
}

// Upload 读取 filePath 全部内容，以 multipart/form-data POST 到 http://host/plugin_install。
// 返回设备的状态码和响应体；状态码是否为 200 由调用方判断。
func (c *Client) Upload(ctx context.Context, host, username, password, filePath string) (*Response, error) {
	log := logging.OrDiscard(c.Logger)

	target, err := InstallURL(host)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLocalIO, err)
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	body := formdata.New(InstallParts(filepath.Base(filePath), content), formdata.NewBoundary(now()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	req.ContentLength = int64(body.Len())
	req.Header.Set("Content-Type", body.ContentType())
	req.Header.Set("User-Agent", LegacyUserAgent)
	if username != NoAuthUsername {
		req.SetBasicAuth(username, password)
	}

	client, err := c.httpClient()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}

	log.WithFields(logging.RedactedHeaders(req.Header)).
		WithField("url", target.String()).
		WithField("bytes", body.Len()).
		Debug("posting archive")

	startTime := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrTransportFailure, err)
	}

	log.WithField("status", resp.StatusCode).
		WithField("duration", time.Since(startTime)).
		Debug("device responded")

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}
