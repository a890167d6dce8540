package models

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrSlugTaken = errors.New("slug may be taken")
)
