package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hwuu/rokuloader/internal/config"
	"github.com/hwuu/rokuloader/internal/installer"
	"github.com/hwuu/rokuloader/internal/logging"
	"github.com/hwuu/rokuloader/internal/remote"
)

// 构建时通过 ldflags 注入
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errInstallFailed 安装失败，详情已输出，main 只负责退出码
var errInstallFailed = errors.New("install failed")

type installOptions struct {
	host        string
	username    string
	password    string
	zipFile     string
	configPath  string
	timeout     time.Duration
	strictProbe bool
	verbose     bool
	save        bool
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "rokuloader",
		Short:         "通过开发者安装页面把 zip 安装包侧载到 Roku 设备",
		Long:          "rokuloader — Roku 开发者应用安装器 (Development Application Installer) 的命令行客户端。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newInstallCmd() *cobra.Command {
	opts := &installOptions{}

	cmd := &cobra.Command{
		Use:     "install",
		Short:   "上传并安装 zip 安装包",
		Example: "  rokuloader install -H 192.168.1.10 -p password -z ./package.zip",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, opts)
		},
	}

	defaultConfig, _ := config.DefaultCredentialsPath()

	f := cmd.Flags()
	f.StringVarP(&opts.host, "hostname", "H", "", "设备的主机名或 IP，可带 :port（环境变量 "+config.EnvHost+"）")
	f.StringVarP(&opts.username, "username", "u", "", "开发者账号，默认 "+config.DefaultUsername+"；旧固件不需要认证时使用 none")
	f.StringVarP(&opts.password, "password", "p", "", "开发者账号密码（环境变量 "+config.EnvPassword+"）")
	f.StringVarP(&opts.zipFile, "zipfile", "z", "", "本地 zip 安装包路径")
	f.StringVar(&opts.configPath, "config", defaultConfig, "credentials 文件路径")
	f.DurationVar(&opts.timeout, "timeout", installer.DefaultUploadTimeout, "上传请求超时")
	f.BoolVar(&opts.strictProbe, "strict-probe", false, "探测遇到 DNS 等非拒绝/超时错误时也视为不可达")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "输出调试日志")
	f.BoolVar(&opts.save, "save", false, "安装成功后把主机和账号写入 credentials 文件")
	_ = cmd.MarkFlagRequired("zipfile")

	return cmd
}

func runInstall(cmd *cobra.Command, opts *installOptions) error {
	out := cmd.OutOrStdout()
	logger := logging.New(cmd.ErrOrStderr(), opts.verbose)

	printBanner(cmd)

	profile, err := config.Resolve(config.Profile{
		Host:     opts.host,
		Username: opts.username,
		Password: opts.password,
	}, opts.configPath)
	if err != nil {
		return err
	}

	prompter := config.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	if profile.NeedsPassword() {
		if !prompter.IsInteractive() {
			return fmt.Errorf("password is required for user %q (use --password, %s or -u none)", profile.Username, config.EnvPassword)
		}
		password, err := prompter.PromptPassword(fmt.Sprintf("%s@%s 的密码: ", profile.Username, profile.Host))
		if err != nil {
			return err
		}
		profile.Password = password
	}

	in := &installer.Installer{
		Uploader: &installer.Client{Timeout: opts.timeout, Logger: logger},
		Probe: func(ctx context.Context, host string) error {
			return remote.Probe(ctx, host, remote.ProbeOptions{Strict: opts.strictProbe, Logger: logger})
		},
		Output: out,
		Logger: logger,
	}

	outcome := in.Run(cmd.Context(), installer.Request{
		Host:     profile.Host,
		Username: profile.Username,
		Password: profile.Password,
		FilePath: opts.zipFile,
	})

	fmt.Fprintln(out)
	if !outcome.Succeeded {
		logger.WithError(outcome.Err).Debug("install failed")
		fmt.Fprintln(cmd.ErrOrStderr(), color.RedString(outcome.Message))
		return errInstallFailed
	}
	fmt.Fprintln(out, strings.TrimSpace(outcome.Message))

	if opts.save && opts.configPath != "" {
		saveProfile(out, prompter, logger, opts.configPath, profile)
	}
	return nil
}

// saveProfile 写入 credentials 文件；文件已存在时先确认，默认不覆盖
func saveProfile(out io.Writer, prompter *config.Prompter, logger logrus.FieldLogger, path string, profile *config.Profile) {
	if _, err := os.Stat(path); err == nil {
		overwrite, err := prompter.PromptConfirm(fmt.Sprintf("%s 已存在，是否覆盖?", path), false)
		if err != nil {
			logger.WithError(err).Warn("failed to read confirmation")
			return
		}
		if !overwrite {
			fmt.Fprintf(out, "未覆盖 %s\n", path)
			return
		}
	}

	if err := config.SaveProfileTo(path, profile); err != nil {
		logger.WithError(err).Warn("failed to save credentials")
		return
	}
	fmt.Fprintf(out, "已保存到 %s\n", path)
}

func printBanner(cmd *cobra.Command) {
	line := strings.Repeat("-", 80)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, line)
	fmt.Fprintf(out, "rokuloader %s\n", version)
	fmt.Fprintln(out, "Roku command line interface for the Development Application Installer")
	fmt.Fprintln(out, line)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rokuloader %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", date)
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errInstallFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
