// Copyright (c) 2026 Plume contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ParseIDParam extracts a positive int64 id from the route.
func ParseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// validationDetails flattens validator errors into the field->message map
// the error envelope carries.
func validationDetails(err error) map[string]string {
	details := make(map[string]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		details["body"] = err.Error()
		return details
	}
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			details[field] = "This field is required"
		case "oneof":
			details[field] = "Must be one of: " + fe.Param()
		case "max":
			details[field] = "Must be at most " + fe.Param() + " characters"
		default:
			details[field] = "Invalid value"
		}
	}
	return details
}
