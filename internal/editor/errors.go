package editor

import "errors"

var (
	errAlreadyOpen = errors.New("editor: already open")
	errNotOpen     = errors.New("editor: not open")
)
