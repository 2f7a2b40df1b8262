package llm

import "context"

// Purposes recorded with each request in llm_requests.
const (
	PurposeQuestion     = "question-gen"
	PurposeConsultation = "consultation"
	purposeUnlabelled   = "unlabelled"
)

type purposeKey struct{}

// WithPurpose labels the requests made with ctx.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose.
func PurposeFrom(ctx context.Context) string {
	if p, ok := ctx.Value(purposeKey{}).(string); ok && p != "" {
		return p
	}
	return purposeUnlabelled
}
