package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/peerscan/pkg/integrations/npm/npmtest"
)

func TestAudit(t *testing.T) {
	reg := npmtest.New(
		npmtest.Package("react", "17.0.2", "18.2.0"),
		npmtest.Package("lodash", "4.17.21"),
		npmtest.Package("typescript", "4.9.5", "5.4.2"),
	).Fail("flaky", errors.New("timeout"))

	deps := map[string]string{
		"react":      "^17.0.2",
		"lodash":     "~4.17.0",
		"typescript": ">=5.0.0",
		"flaky":      "^1.0.0",
		"local":      "file:../local",
		"gone":       "^1.0.0",
	}
	res := NewEngine(reg, nil).Audit(context.Background(), deps)

	if len(res.Findings) != 1 {
		t.Fatalf("Findings = %+v, want 1", res.Findings)
	}
	f := res.Findings[0]
	if f.Name != "react" || f.Current != "17.0.2" || f.Latest != "18.2.0" {
		t.Errorf("finding = %+v", f)
	}
	if f.Recommendation != "Upgrade react from 17.0.2 to 18.2.0" {
		t.Errorf("Recommendation = %q", f.Recommendation)
	}

	stages := map[string]bool{}
	for _, is := range res.Issues {
		stages[is.Package] = true
	}
	for _, want := range []string{"flaky", "local", "gone"} {
		if !stages[want] {
			t.Errorf("missing issue for %s, got %v", want, res.Issues)
		}
	}
}
