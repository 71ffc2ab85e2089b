// Package remote 负责上传前的连通性探测：只建立一次 TCP 连接，确认设备的 Web 端口有监听。
package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hwuu/rokuloader/internal/logging"
)

var (
	ErrNoListener = errors.New("no listener on target port")
)

const (
	DefaultPort         = 80
	DefaultProbeTimeout = 10 * time.Second
)

// DialFunc 建立 TCP 连接的函数类型，测试中替换为 fake
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ProbeOptions 配置探测参数
type ProbeOptions struct {
	Port    int           // host 未显式带端口时使用，默认 80
	Timeout time.Duration // 单次连接超时
	// Strict 为 true 时，拒绝/超时以外的错误（如 DNS 失败）也视为不可达
	Strict bool
	Dial   DialFunc
	Logger logrus.FieldLogger
}

func (o *ProbeOptions) withDefaults() {
	if o.Port == 0 {
		o.Port = DefaultPort
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultProbeTimeout
	}
	if o.Dial == nil {
		d := &net.Dialer{Timeout: o.Timeout}
		o.Dial = d.DialContext
	}
	o.Logger = logging.OrDiscard(o.Logger)
}

// Address 返回探测地址。host 自带端口时沿用，否则使用 port
func Address(host string, port int) string {
	if h, p, err := net.SplitHostPort(host); err == nil {
		return net.JoinHostPort(h, p)
	}
	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}

// Probe 尝试连接 host 的 Web 端口，连接建立后立即关闭。
// 连接被拒绝或超时返回 ErrNoListener；其他错误默认视为可达（仅记录警告），Strict 模式下返回错误。
func Probe(ctx context.Context, host string, opts ProbeOptions) error {
	opts.withDefaults()

	addr := Address(host, opts.Port)
	log := opts.Logger.WithField("addr", addr)

	dialCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	conn, err := opts.Dial(dialCtx, "tcp", addr)
	if err == nil {
		log.Debug("probe connected")
		return conn.Close()
	}

	// 调用方取消（如 Ctrl+C）不是探测结论
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if isNoListener(err) {
		return fmt.Errorf("%w at %s: %v", ErrNoListener, addr, err)
	}

	if opts.Strict {
		return fmt.Errorf("probe %s failed: %w", addr, err)
	}

	log.WithError(err).Warn("probe failed with an unclassified error, continuing as reachable")
	return nil
}

// IsReachable Probe 的布尔版本
func IsReachable(ctx context.Context, host string, opts ProbeOptions) bool {
	return Probe(ctx, host, opts) == nil
}

// isNoListener 判断错误是否表示端口无人监听（拒绝或超时）
func isNoListener(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ETIMEDOUT) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
