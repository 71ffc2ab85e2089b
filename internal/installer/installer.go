// Package installer 编排一次完整的开发者安装：校验 → 探测 → 上传 → 解析响应。
// 流程只跑一次，任一阶段失败即终止，不做自动重试。
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/hwuu/rokuloader/internal/archive"
	"github.com/hwuu/rokuloader/internal/logging"
	"github.com/hwuu/rokuloader/internal/remote"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
)

// Request 一次安装请求，由 CLI 层构造，只读
type Request struct {
	Host     string
	Username string
	Password string
	FilePath string
}

// Outcome 安装结果。Stage 为结束时所处阶段，失败时 Err 为 *StageError
type Outcome struct {
	Succeeded bool
	Message   string
	Stage     Stage
	Err       error
}

// Uploader 抽象上传动作，*Client 为真实实现
type Uploader interface {
	Upload(ctx context.Context, host, username, password, filePath string) (*Response, error)
}

// ProbeFunc 连通性探测，返回 nil 表示可以继续上传
type ProbeFunc func(ctx context.Context, host string) error

// Installer 安装编排器，通过依赖注入支持测试
type Installer struct {
	Uploader Uploader
	Probe    ProbeFunc
	Output   io.Writer
	Logger   logrus.FieldLogger
}

func (in *Installer) printf(format string, args ...interface{}) {
	if in.Output == nil {
		return
	}
	fmt.Fprintf(in.Output, format, args...)
}

func (in *Installer) uploader() Uploader {
	if in.Uploader != nil {
		return in.Uploader
	}
	return &Client{Logger: in.Logger}
}

func (in *Installer) probe(ctx context.Context, host string) error {
	if in.Probe != nil {
		return in.Probe(ctx, host)
	}
	return remote.Probe(ctx, host, remote.ProbeOptions{Logger: in.Logger})
}

func (in *Installer) fail(stage Stage, kind, err error, message string) Outcome {
	in.printf("  %s %s\n", red("✗"), message)
	return Outcome{
		Message: message,
		Stage:   stage,
		Err:     stageErr(stage, kind, err),
	}
}

// Validate 上传前的本地校验：主机名格式、文件存在、zip 签名
func (in *Installer) Validate(req Request) *Outcome {
	in.printf("[1/3] 校验安装包...\n")

	if _, err := InstallURL(req.Host); err != nil {
		out := in.fail(StageValidating, ErrInvalidTarget, err, fmt.Sprintf("invalid hostname %q", req.Host))
		return &out
	}

	info, err := os.Stat(req.FilePath)
	if err != nil {
		out := in.fail(StageValidating, ErrLocalIO, err, fmt.Sprintf("file does not exist %s", req.FilePath))
		return &out
	}
	if info.IsDir() {
		out := in.fail(StageValidating, ErrLocalIO, fmt.Errorf("%s is a directory", req.FilePath),
			fmt.Sprintf("not a regular file %s", req.FilePath))
		return &out
	}

	if !archive.IsArchive(req.FilePath) {
		out := in.fail(StageValidating, ErrNotAnArchive, nil, fmt.Sprintf("not a valid archive %s", req.FilePath))
		return &out
	}

	in.printf("  %s %s (%d bytes)\n", green("✓"), filepath.Base(req.FilePath), info.Size())
	return nil
}

// Run 执行完整安装流程，始终返回一个结果，不会 panic 或重试
func (in *Installer) Run(ctx context.Context, req Request) Outcome {
	log := logging.OrDiscard(in.Logger).WithField("host", req.Host)

	// 阶段 1: 本地校验
	if out := in.Validate(req); out != nil {
		return *out
	}

	// 阶段 2: 连通性探测
	in.printf("\n[2/3] 连接 %s...\n", req.Host)
	if err := in.probe(ctx, req.Host); err != nil {
		// 用户中断不是"无监听"，单独报告
		if ctx.Err() != nil {
			return in.fail(StageProbing, ErrCancelled, ctx.Err(), ErrCancelled.Error())
		}
		log.WithError(err).Debug("probe rejected target")
		return in.fail(StageProbing, ErrUnreachable, err, fmt.Sprintf("no installer port responding at %s", req.Host))
	}
	in.printf("  %s 安装端口已响应\n", green("✓"))

	// 阶段 3: 上传
	in.printf("\n[3/3] 上传 %s...\n", filepath.Base(req.FilePath))
	resp, err := in.uploader().Upload(ctx, req.Host, req.Username, req.Password, req.FilePath)
	if err != nil {
		if ctx.Err() != nil {
			return in.fail(StageUploading, ErrCancelled, err, ErrCancelled.Error())
		}
		kind := ErrTransportFailure
		switch {
		case errors.Is(err, ErrInvalidTarget):
			kind = ErrInvalidTarget
		case errors.Is(err, ErrLocalIO):
			kind = ErrLocalIO
		}
		return in.fail(StageUploading, kind, err, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		message := fmt.Sprintf("%v: %v", ErrTransportFailure, statusErr)
		if detail := FormatResponse(string(resp.Body)); detail != "" && detail != string(resp.Body) {
			message += "\n" + detail
		}
		return in.fail(StageUploading, ErrTransportFailure, statusErr, message)
	}

	in.printf("  %s 设备已接收安装包\n", green("✓"))
	return Outcome{
		Succeeded: true,
		Message:   FormatResponse(string(resp.Body)),
		Stage:     StageUploading,
	}
}
