// Package archive 提供本地安装包的预检：只看文件头签名，不解析 zip 目录结构。
package archive

import (
	"bytes"
	"io"
	"os"
)

// ZipSignature zip 本地文件头的魔数 (PK\x03\x04)
var ZipSignature = []byte{0x50, 0x4B, 0x03, 0x04}

// IsArchive 读取文件前 4 字节并与 zip 魔数比较。
// 任何 I/O 错误、文件不存在或长度不足都返回 false，不会返回错误。
func IsArchive(filePath string) bool {
	if filePath == "" {
		return false
	}

	f, err := os.Open(filePath)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, len(ZipSignature))
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}

	return bytes.Equal(header, ZipSignature)
}
