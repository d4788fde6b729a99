package repository

import "errors"

var ErrQuizNotFound = errors.New("quiz not found")
