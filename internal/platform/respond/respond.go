// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond writes the JSON envelopes every API route shares.
//
//	200 {"data": {...}}
//	200 {"data": [...], "meta": {"page": 1, "limit": 20, "total": 42, "total_pages": 3}}
//	4xx {"error": "Forbidden", "code": "FORBIDDEN"}
//
// Handlers never encode responses themselves.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/ctxutil"
	"github.com/taibuivan/agentdesk/pkg/pagination"
)

const contentTypeJSON = "application/json; charset=utf-8"

// SuccessEnvelope wraps a single resource.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// PaginatedEnvelope wraps one page of a collection.
type PaginatedEnvelope struct {
	Data any             `json:"data"`
	Meta pagination.Meta `json:"meta"`
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON encodes payload with status. Encoding failures are logged, the
// header has already been sent at that point.
func JSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", contentTypeJSON)
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(payload); err != nil {
		slog.Default().Error("response_encode_failed", slog.Any("error", err))
	}
}

// OK writes 200 with data in the success envelope.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Created writes 201 with data in the success envelope.
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// Paginated writes 200 with a page of data and its metadata.
func Paginated(writer http.ResponseWriter, data any, meta pagination.Meta) {
	JSON(writer, http.StatusOK, PaginatedEnvelope{Data: data, Meta: meta})
}

// NoContent writes 204.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error writes err as an [ErrorEnvelope]. Errors that are not an
// [*apperr.AppError] become a generic 500. Every 5xx is logged with its
// cause through the request logger.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	failure := apperr.As(err)
	if failure == nil {
		failure = apperr.Internal(err)
	}

	if failure.HTTPStatus >= http.StatusInternalServerError {
		ctx := request.Context()
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "api_server_error",
			slog.String("code", failure.Code),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
			slog.Any("cause", failure.Cause),
		)
	}

	JSON(writer, failure.HTTPStatus, ErrorEnvelope{
		Error:   failure.Message,
		Code:    failure.Code,
		Details: failure.Details,
	})
}
