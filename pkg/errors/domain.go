package errors

import "net/http"

func sentinel(t ErrorType, status int, code, message string) *AppError {
	return &AppError{Type: t, Code: code, Message: message, HTTPStatus: status}
}

// Domain sentinels. Compare with errors.Is; attach context with Wrap rather
// than mutating them.
var (
	ErrEvidenceMapNotFound = sentinel(ErrorTypeNotFound, http.StatusNotFound, "EVIDENCE_MAP_NOT_FOUND", "evidence map not found")
	ErrNodeNotFound        = sentinel(ErrorTypeNotFound, http.StatusNotFound, "NODE_NOT_FOUND", "node not found")
	ErrEdgeNotFound        = sentinel(ErrorTypeNotFound, http.StatusNotFound, "EDGE_NOT_FOUND", "edge not found")
	ErrDuplicateNode       = sentinel(ErrorTypeConflict, http.StatusConflict, "DUPLICATE_NODE", "node id already exists")
	ErrDuplicateEdge       = sentinel(ErrorTypeConflict, http.StatusConflict, "DUPLICATE_EDGE", "edge id already exists")

	ErrEditInProgress = sentinel(ErrorTypeConflict, http.StatusConflict, "EDIT_IN_PROGRESS", "another node is being edited")
	ErrNoEditSession  = sentinel(ErrorTypeConflict, http.StatusConflict, "NO_EDIT_SESSION", "no node is being edited")
	ErrSaveInProgress = sentinel(ErrorTypeConflict, http.StatusConflict, "SAVE_IN_PROGRESS", "a save is already running")

	ErrNothingToExport          = sentinel(ErrorTypeValidation, http.StatusBadRequest, "NOTHING_TO_EXPORT", "the evidence map has no nodes to export")
	ErrRenderSurfaceUnavailable = sentinel(ErrorTypeUnavailable, http.StatusServiceUnavailable, "RENDER_SURFACE_UNAVAILABLE", "render surface not found")

	ErrDraftJobFailed      = sentinel(ErrorTypeExternal, http.StatusBadGateway, "DRAFT_JOB_FAILED", "drafting job failed")
	ErrDraftJobUnreachable = sentinel(ErrorTypeUnavailable, http.StatusServiceUnavailable, "DRAFT_JOB_UNREACHABLE", "drafting job status unavailable")
)
