// prompt.go 提供 CLI 交互式输入：文本输入、密码输入（掩码显示）、确认。
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter 封装 CLI 交互式输入，通过 reader/writer 抽象支持 mock 测试
type Prompter struct {
	reader  io.Reader
	writer  io.Writer
	scanner *bufio.Scanner
}

// NewPrompter 创建 Prompter（指定输入输出流）
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	return &Prompter{
		reader:  reader,
		writer:  writer,
		scanner: bufio.NewScanner(reader),
	}
}

// IsInteractive 输入是否来自终端
func (p *Prompter) IsInteractive() bool {
	f, ok := p.reader.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Prompt 显示提示信息并读取一行输入
func (p *Prompter) Prompt(message string) (string, error) {
	fmt.Fprint(p.writer, message)
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// PromptPassword 密码输入，终端模式下每个字符显示为 *，支持退格删除。
// 非终端模式（如测试 mock）退化为普通文本读取。
func (p *Prompter) PromptPassword(message string) (string, error) {
	if p.IsInteractive() {
		fmt.Fprint(p.writer, message)
		f := p.reader.(*os.File)
		password, err := readPassword(int(f.Fd()), f, p.writer)
		if err != nil {
			return "", err
		}
		fmt.Fprintln(p.writer)
		return string(password), nil
	}
	return p.Prompt(message)
}

// PromptConfirm 确认提示。defaultYes=true 时默认 yes [Y/n]，否则默认 no [y/N]
func (p *Prompter) PromptConfirm(message string, defaultYes bool) (bool, error) {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	result, err := p.Prompt(fmt.Sprintf("%s %s: ", message, hint))
	if err != nil {
		return false, err
	}
	result = strings.ToLower(result)
	if result == "" {
		return defaultYes, nil
	}
	return result == "y" || result == "yes", nil
}

// readPassword 从终端读取密码，每输入一个字符显示 *。
// 通过 term.MakeRaw 进入原始模式逐字符读取，退出时恢复终端状态。
func readPassword(fd int, in io.Reader, echo io.Writer) ([]byte, error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return term.ReadPassword(fd)
	}
	defer term.Restore(fd, oldState)

	return readMasked(in, echo)
}

// readMasked 逐字节读取直到回车/换行，回显 *，支持退格删除
func readMasked(in io.Reader, echo io.Writer) ([]byte, error) {
	var password []byte
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if err != nil || n == 0 {
			break
		}
		ch := buf[0]
		switch {
		case ch == '\r' || ch == '\n':
			return password, nil
		case ch == 3: // Ctrl+C
			return nil, fmt.Errorf("interrupted")
		case ch == 127 || ch == 8: // Backspace / Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				echo.Write([]byte("\b \b"))
			}
		default:
			password = append(password, ch)
			echo.Write([]byte("*"))
		}
	}
	return password, nil
}
