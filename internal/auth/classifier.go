// Package auth classifies content API error payloads and introspects the
// bearer tokens the API issues. The upstream reports failures only as
// human-readable message strings, so classification is a substring table
// tuned to that API's vocabulary and kept configurable.
package auth

import "strings"

// Classification buckets an upstream error list for session policy.
type Classification int

const (
	// ClassUnknown covers messages the tables do not recognize. Session
	// verification treats unknowns as transient to avoid spurious logout.
	ClassUnknown Classification = iota
	// ClassRejected is an explicit credential refusal. The only
	// classification allowed to destroy a session.
	ClassRejected
	// ClassTransient covers network-ish upstream messages that are safe
	// to retry.
	ClassTransient
)

func (c Classification) String() string {
	switch c {
	case ClassRejected:
		return "rejected"
	case ClassTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Classifier maps error messages to a Classification. The default tables
// mirror the wording observed from the WPGraphQL JWT plugin; both can be
// replaced wholesale when the upstream vocabulary changes.
type Classifier struct {
	rejected  []string
	transient []string
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithRejectedTerms replaces the credential-refusal substring table.
func WithRejectedTerms(terms ...string) Option {
	return func(c *Classifier) { c.rejected = lower(terms) }
}

// WithTransientTerms replaces the retry-safe substring table.
func WithTransientTerms(terms ...string) Option {
	return func(c *Classifier) { c.transient = lower(terms) }
}

// NewClassifier builds a classifier with the default vocabulary.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		rejected: []string{
			"expired token",
			"expired",
			"invalid token",
			"invalid-secret-key",
			"not authenticated",
			"unauthorized",
			"authentication",
		},
		transient: []string{
			"network",
			"fetch",
			"connection",
			"timeout",
			"timed out",
			"unavailable",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify inspects every message and returns the strongest signal found.
// Rejection wins over transient: a response that names both a credential
// problem and a network problem still terminates the session.
func (c *Classifier) Classify(msgs []string) Classification {
	out := ClassUnknown
	for _, m := range msgs {
		m = strings.ToLower(m)
		for _, term := range c.rejected {
			if strings.Contains(m, term) {
				return ClassRejected
			}
		}
		// "jwt" alone is ambiguous; paired with a failure word it is a
		// credential problem.
		if strings.Contains(m, "jwt") && (strings.Contains(m, "invalid") || strings.Contains(m, "malformed")) {
			return ClassRejected
		}
		for _, term := range c.transient {
			if strings.Contains(m, term) {
				out = ClassTransient
			}
		}
	}
	return out
}

func lower(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}
