package viewer

import (
	"errors"

	"github.com/binzume/sceneview/engine"
)

var (
	ErrModelNotLoaded        = errors.New("model not loaded; call Load first")
	ErrTreeNotAvailable      = errors.New("object tree not available; wait for the " + engine.ObjectTreeCreated.String() + " event")
	ErrFragmentsNotAvailable = errors.New("fragments not yet available; wait for the " + engine.GeometryLoaded.String() + " event")
	ErrViewableNotFound      = errors.New("viewable not found")
)

func engineError(code engine.ErrorCode, message string) error {
	return &engine.LoadError{Code: code, Message: message}
}
