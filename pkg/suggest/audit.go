package suggest

import (
	"context"
	"fmt"

	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/semver"
)

// Finding is a dependency whose declared major is behind the registry.
type Finding struct {
	Name           string `json:"name"`
	Current        string `json:"current"`
	Latest         string `json:"latest"`
	Recommendation string `json:"recommendation"`
}

// AuditResult is the outcome of [Engine.Audit].
type AuditResult struct {
	Findings []Finding      `json:"findings"`
	Issues   []errors.Issue `json:"issues"`
}

// Audit compares each declared dependency against the registry's latest
// version and reports those a major version behind. The current version
// is the lower bound of the declared range. Peer dependencies are not
// considered. Results are ordered by name.
func (e *Engine) Audit(ctx context.Context, deps map[string]string) *AuditResult {
	res := &AuditResult{Findings: []Finding{}, Issues: []errors.Issue{}}
	for _, name := range sortedKeys(deps) {
		current, err := semver.Floor(deps[name])
		if err != nil {
			res.Issues = append(res.Issues, errors.Issue{Package: name, Stage: "audit", Err: err})
			continue
		}
		latestRaw, err := e.Latest(ctx, name)
		if err != nil {
			e.logger.Debug("audit lookup failed", "package", name, "err", err)
			res.Issues = append(res.Issues, errors.Issue{Package: name, Stage: "audit", Err: err})
			continue
		}
		if latestRaw == "" {
			res.Issues = append(res.Issues, errors.Issue{
				Package: name,
				Stage:   "audit",
				Err:     errors.New(errors.ErrCodePackageNotFound, "%s has no latest version in the registry", name),
			})
			continue
		}
		latest, err := semver.ParseVersion(latestRaw)
		if err != nil {
			res.Issues = append(res.Issues, errors.Issue{Package: name, Stage: "audit", Err: err})
			continue
		}
		if current.Major() >= latest.Major() {
			continue
		}
		res.Findings = append(res.Findings, Finding{
			Name:           name,
			Current:        current.String(),
			Latest:         latestRaw,
			Recommendation: fmt.Sprintf("Upgrade %s from %s to %s", name, current, latestRaw),
		})
	}
	return res
}
