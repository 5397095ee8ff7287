package credentials

import (
	"errors"
	"fmt"
)

// Stage identifies a step of the registration pipeline
type Stage string

// The stages of the registration pipeline, in order
const (
	StageReadCertificate     Stage = "read-certificate"
	StageRegisterCertificate Stage = "register-certificate"
	StageAttachPolicy        Stage = "attach-policy"
	StageAttachThing         Stage = "attach-thing"
)

// Error is returned by every failing step of the registration pipeline
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsStage reports whether err is a pipeline error which failed in stage
func IsStage(err error, stage Stage) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage == stage
	}
	return false
}
