package words

import "errors"

// Errors returned by the store; check them with errors.Is
var (
	ErrEmptyInput             = errors.New("input is empty")
	ErrDuplicateEntry         = errors.New("word is already in the list")
	ErrValidation             = errors.New("validation error")
	ErrLastList               = errors.New("cannot delete the last list")
	ErrListNotFound           = errors.New("list not found")
	ErrWordNotFound           = errors.New("word not found")
	ErrTranslationUnavailable = errors.New("translation is not available, try again")
)
