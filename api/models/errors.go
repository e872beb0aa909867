package models

// ErrorResponse carries a human-readable message plus a stable code so the
// frontend can tell "you already voted" apart from "voting has ended".
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

const (
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeAlreadyVoted       = "ALREADY_VOTED"
	CodeNoActivePeriod     = "NO_ACTIVE_PERIOD"
	CodeNotStarted         = "NOT_STARTED"
	CodeEnded              = "ENDED"
	CodeInvalidCandidate   = "INVALID_CANDIDATE"
	CodeCategoryMismatch   = "CATEGORY_MISMATCH"
	CodeCommitFailed       = "COMMIT_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodePreconditionFailed = "PRECONDITION_FAILED"
)
