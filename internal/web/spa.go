// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package web serves the pre-built single-page front end.
//
// Paths that name an existing file are served as-is. Every other path gets
// index.html so the client-side router can take over.
package web

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/taibuivan/agentdesk/internal/platform/apperr"
	"github.com/taibuivan/agentdesk/internal/platform/respond"
)

const indexFile = "index.html"

// SPA serves static assets with an index.html fallback.
type SPA struct {
	files      fs.FS
	fileServer http.Handler
}

// NewSPA constructs a new [SPA] over files, typically os.DirFS(WEB_ROOT).
func NewSPA(files fs.FS) *SPA {
	return &SPA{files: files, fileServer: http.FileServer(http.FS(files))}
}

// ServeHTTP implements [http.Handler].
func (spa *SPA) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet && request.Method != http.MethodHead {
		writer.Header().Set("Allow", "GET, HEAD")
		respond.Error(writer, request, &apperr.AppError{
			Code:       "METHOD_NOT_ALLOWED",
			Message:    "Method not allowed",
			HTTPStatus: http.StatusMethodNotAllowed,
		})
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+request.URL.Path), "/")
	if name != "" && spa.isFile(name) {
		spa.fileServer.ServeHTTP(writer, request)
		return
	}

	index, err := fs.ReadFile(spa.files, indexFile)
	if err != nil {
		respond.Error(writer, request, apperr.NotFound("Page"))
		return
	}

	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.WriteHeader(http.StatusOK)
	if request.Method == http.MethodGet {
		_, _ = writer.Write(index)
	}
}

func (spa *SPA) isFile(name string) bool {
	info, err := fs.Stat(spa.files, name)
	return err == nil && !info.IsDir()
}
