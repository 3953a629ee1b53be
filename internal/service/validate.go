package service

import (
	"net/mail"
	"strings"

	"go-watchlist/pkg/apierror"
)

const (
	minPasswordLength = 6
	maxNameLength     = 100
	maxNotesLength    = 2000
	maxTitleLength    = 500
)

type validator struct {
	fields []apierror.FieldError
}

func (v *validator) add(field, message string) {
	v.fields = append(v.fields, apierror.FieldError{Field: field, Message: message})
}

func (v *validator) email(field, value string) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		v.add(field, "Please include a valid email")
		return
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed || addr.Name != "" {
		v.add(field, "Please include a valid email")
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return apierror.Validation(v.fields...)
}
