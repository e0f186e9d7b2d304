package tracker

import (
	"context"
	"fmt"
	"math/rand"
)

const (
	issueSuffixLen  = 4
	commentIDLen    = 8
	idMaxRetries    = 10
	base36Alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// IDExistsFunc checks whether a candidate issue ID is already present.
// The sqlite store supplies this by querying the issues table; kept as a
// function type here so the generator has no storage-layer dependency.
type IDExistsFunc func(ctx context.Context, id string) (bool, error)

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Alphabet[rand.Intn(len(base36Alphabet))]
	}
	return string(b)
}

// GenerateIssueID produces `{prefix}-{4 base36 chars}`, retrying on
// collision up to idMaxRetries times before giving up with KindExhausted.
func GenerateIssueID(ctx context.Context, prefix string, exists IDExistsFunc) (string, error) {
	for i := 0; i < idMaxRetries; i++ {
		candidate := fmt.Sprintf("%s-%s", prefix, randomBase36(issueSuffixLen))
		found, err := exists(ctx, candidate)
		if err != nil {
			return "", NewError(KindIO, "GenerateIssueID", err)
		}
		if !found {
			return candidate, nil
		}
	}
	return "", NewError(KindExhausted, "GenerateIssueID", fmt.Errorf("no unique id after %d attempts for prefix %q", idMaxRetries, prefix))
}

// GenerateCommentID produces `c-{8 base36 chars}`. Uniqueness is
// statistical — no collision check is performed, matching the spec.
func GenerateCommentID() string {
	return fmt.Sprintf("c-%s", randomBase36(commentIDLen))
}
