// Package tfixtures generates realistic issue trees for tests and
// local benchmarking: epics, features under epics, and tasks under
// features, with labels and a configurable ratio of cross-epic
// "blocks" edges.
package tfixtures

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/opensrc/tracker/internal/tracker"
	"github.com/opensrc/tracker/internal/tracker/storage/sqlite"
)

var commonLabels = []string{
	"backend", "frontend", "urgent", "tech-debt", "documentation",
	"performance", "security", "ux", "api", "database",
}

var epicTitles = []string{
	"User Authentication System", "Payment Processing Integration",
	"Mobile App Redesign", "Performance Optimization", "API v2 Migration",
}

var featureTitles = []string{
	"OAuth2 Integration", "Password Reset Flow", "Session Management",
	"API Endpoints", "Background Jobs",
}

var taskTitles = []string{
	"Implement login endpoint", "Add validation logic", "Write unit tests",
	"Update documentation", "Fix memory leak", "Optimize query performance",
}

// Config controls the shape and scale of a generated tree.
type Config struct {
	TotalIssues    int     // total issues across all three tiers
	EpicRatio      float64 // fraction of TotalIssues that are epics
	FeatureRatio   float64 // fraction of TotalIssues that are features
	CrossLinkRatio float64 // fraction of tasks that get a cross-epic "blocks" edge
	RandSeed       int64
}

// Small returns a config sized for fast unit tests (tens of issues).
func Small() Config {
	return Config{TotalIssues: 40, EpicRatio: 0.1, FeatureRatio: 0.3, CrossLinkRatio: 0.2, RandSeed: 1}
}

// Medium returns a config sized for store-level integration tests and
// local search/pagination benchmarking (hundreds of issues).
func Medium() Config {
	return Config{TotalIssues: 500, EpicRatio: 0.1, FeatureRatio: 0.3, CrossLinkRatio: 0.2, RandSeed: 42}
}

// Generate populates store with cfg.TotalIssues issues: epics at the
// root, features parented to an epic via the Parent field, and tasks
// parented to a feature, plus labels and a sample of cross-epic
// "blocks" dependencies among tasks. It returns the created issue IDs
// grouped by tier.
func Generate(ctx context.Context, store *sqlite.Store, prefix string, cfg Config) (epics, features, tasks []string, err error) {
	rng := rand.New(rand.NewSource(cfg.RandSeed))

	numEpics := max(1, int(float64(cfg.TotalIssues)*cfg.EpicRatio))
	numFeatures := max(1, int(float64(cfg.TotalIssues)*cfg.FeatureRatio))
	numTasks := cfg.TotalIssues - numEpics - numFeatures
	if numTasks < 1 {
		numTasks = 1
	}

	for i := 0; i < numEpics; i++ {
		id, err := createOne(ctx, store, prefix, "epic", fmt.Sprintf("%s (Epic %d)", epicTitles[i%len(epicTitles)], i), nil, rng)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create epic: %w", err)
		}
		epics = append(epics, id)
	}

	for i := 0; i < numFeatures; i++ {
		parent := epics[i%len(epics)]
		id, err := createOne(ctx, store, prefix, "feature", fmt.Sprintf("%s (Feature %d)", featureTitles[i%len(featureTitles)], i), &parent, rng)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create feature: %w", err)
		}
		features = append(features, id)
	}

	for i := 0; i < numTasks; i++ {
		parent := features[i%len(features)]
		id, err := createOne(ctx, store, prefix, "task", fmt.Sprintf("%s (Task %d)", taskTitles[i%len(taskTitles)], i), &parent, rng)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create task: %w", err)
		}
		tasks = append(tasks, id)
	}

	numCrossLinks := int(float64(len(tasks)) * cfg.CrossLinkRatio)
	for i := 0; i < numCrossLinks; i++ {
		from := tasks[rng.Intn(len(tasks))]
		to := tasks[rng.Intn(len(tasks))]
		if from == to {
			continue
		}
		// Cross-links may form cycles across the sampled pairs; the
		// store accepts them as opaque edges since only "blocks" with
		// a live requester path is enforced by Ready.
		_ = store.AddDependency(ctx, from, to, string(tracker.DepBlocks))
	}

	return epics, features, tasks, nil
}

func createOne(ctx context.Context, store *sqlite.Store, prefix, issueType, title string, parent *string, rng *rand.Rand) (string, error) {
	issue, err := store.Create(ctx, prefix, tracker.CreateParams{
		Title:    title,
		Body:     fmt.Sprintf("Generated fixture body for %s", title),
		Type:     issueType,
		Status:   randomStatus(rng),
		Priority: randomPriority(rng),
		Author:   "fixture",
		Labels:   sampleLabels(rng),
		Parent:   parent,
	})
	if err != nil {
		return "", err
	}
	if issue.Status == tracker.StatusClosed {
		if _, err := store.CloseIssue(ctx, issue.ID); err != nil {
			return "", err
		}
	}
	return issue.ID, nil
}

func sampleLabels(rng *rand.Rand) []string {
	n := rng.Intn(3) + 1
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, commonLabels[rng.Intn(len(commonLabels))])
	}
	return out
}

func randomStatus(rng *rand.Rand) string {
	switch rng.Intn(4) {
	case 0:
		return string(tracker.StatusOpen)
	case 1:
		return string(tracker.StatusInProgress)
	case 2:
		return string(tracker.StatusClosed)
	default:
		return string(tracker.StatusOpen)
	}
}

// randomPriority mirrors the p0..p4 distribution: p0 5%, p1 15%, p2 50%, p3 25%, p4 5%.
func randomPriority(rng *rand.Rand) string {
	r := rng.Intn(100)
	switch {
	case r < 5:
		return "p0"
	case r < 20:
		return "p1"
	case r < 70:
		return "p2"
	case r < 95:
		return "p3"
	default:
		return "p4"
	}
}
