package handlers

import (
	"errors"

	"github.com/baharkarakas/betzone-api/internal/api/httpx"
	"github.com/baharkarakas/betzone-api/internal/apperr"
)

func isUnauthenticated(err error) bool {
	if apperr.Is(err, apperr.CategoryUnauthenticated) {
		return true
	}
	var ce httpx.Classified
	return errors.As(err, &ce) && ce.Category() == apperr.CategoryUnauthenticated
}
