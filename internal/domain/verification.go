package domain

// VerificationStatus classifies the outcome of checking a bearer token
// against the content API.
type VerificationStatus int

const (
	// StatusVerified means the API confirmed the token and returned a
	// fresh identity.
	StatusVerified VerificationStatus = iota
	// StatusTransientFailure covers network errors, timeouts and
	// ambiguous server errors. The cached identity must be preserved.
	StatusTransientFailure
	// StatusRejected means the API explicitly refused the credential.
	// Only this outcome may destroy persisted session state.
	StatusRejected
)

func (s VerificationStatus) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusTransientFailure:
		return "transient_failure"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// VerificationResult is the outcome of a single verify call.
type VerificationResult struct {
	Status   VerificationStatus
	Identity Identity // populated only when Status == StatusVerified
	Reason   string   // populated for transient failures
}

// Verified wraps a fresh identity.
func Verified(id Identity) VerificationResult {
	return VerificationResult{Status: StatusVerified, Identity: id}
}

// Transient records a retry-safe failure with its cause.
func Transient(reason string) VerificationResult {
	return VerificationResult{Status: StatusTransientFailure, Reason: reason}
}

// Rejected records an explicit credential refusal.
func Rejected() VerificationResult {
	return VerificationResult{Status: StatusRejected}
}
