package sweep

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedBlockSyntax = errors.New("unsupported block syntax")
	ErrUnsupportedFilter      = errors.New("unsupported filter")
)

// UnsupportedBlockSyntaxError is returned when a block tag matches none of
// the recognized statements.
type UnsupportedBlockSyntaxError struct {
	Tag string // trimmed tag content
	Pos Pos
}

func (e *UnsupportedBlockSyntaxError) Error() string {
	return fmt.Sprintf("%s: %v: {%% %s %%}", e.Pos, ErrUnsupportedBlockSyntax, e.Tag)
}

func (e *UnsupportedBlockSyntaxError) Is(target error) bool {
	return target == ErrUnsupportedBlockSyntax
}

// UnsupportedFilterError is returned when an expression names a filter that
// is not in the target's registry.
type UnsupportedFilterError struct {
	Filter string
	Pos    Pos
}

func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("%s: %v: %q", e.Pos, ErrUnsupportedFilter, e.Filter)
}

func (e *UnsupportedFilterError) Is(target error) bool {
	return target == ErrUnsupportedFilter
}
