package installer

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTarget    = errors.New("invalid target")
	ErrNotAnArchive     = errors.New("not a valid archive")
	ErrUnreachable      = errors.New("no installer port responding")
	ErrTransportFailure = errors.New("upload failed")
	ErrLocalIO          = errors.New("local file unreadable")
	ErrCancelled        = errors.New("install cancelled")
)

// Stage 安装流程的阶段
type Stage string

const (
	StageValidating Stage = "validating"
	StageProbing    Stage = "probing"
	StageUploading  Stage = "uploading"
)

// StageError 记录失败发生的阶段、错误类别和底层原因。
// errors.Is 同时匹配类别（如 ErrUnreachable）和底层错误。
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	// 底层错误已带类别前缀时不再重复
	if errors.Is(e.Err, e.Kind) {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stageErr(stage Stage, kind, err error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Err: err}
}
