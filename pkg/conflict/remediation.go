package conflict

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"
)

// Kind is the operation a remediation performs.
type Kind string

const (
	Upgrade   Kind = "upgrade"
	Downgrade Kind = "downgrade"
	Install   Kind = "install"
)

// devMarker tags descriptions of remediations on dev dependencies.
const devMarker = " [dev]"

// Remediation is a fix expressed as data. From is empty for installs.
type Remediation struct {
	Kind    Kind   `json:"kind"`
	Package string `json:"package"`
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	Dev     bool   `json:"dev,omitempty"`
}

// Spec returns "package@to".
func (r Remediation) Spec() string { return r.Package + "@" + r.To }

// InstallArgs returns the npm arguments that apply r.
func (r Remediation) InstallArgs() []string {
	args := []string{"install", r.Spec()}
	if r.Dev {
		args = append(args, "--save-dev")
	}
	return args
}

// describe renders r in the template ParseSolution reads. detail follows
// "Install <pkg>@<version>" and is ignored by the parser.
func (r Remediation) describe(detail string) string {
	var s string
	switch r.Kind {
	case Upgrade:
		s = fmt.Sprintf("Upgrade %s from %s to %s", r.Package, r.From, r.To)
	case Downgrade:
		s = fmt.Sprintf("Downgrade %s from %s to %s", r.Package, r.From, r.To)
	default:
		s = "Install " + r.Spec()
		if detail != "" {
			s += " " + detail
		}
	}
	if r.Dev {
		s += devMarker
	}
	return s
}

func newSolution(r Remediation, detail string) Solution {
	return Solution{Description: r.describe(detail), Action: r}
}

var (
	changePattern  = regexp.MustCompile(`^(Upgrade|Downgrade) (\S+) from (\S+) to (\S+)$`)
	installPattern = regexp.MustCompile(`^Install (\S+)(?: .*)?$`)
)

// ParseSolution recovers the remediation from a solution description. It
// accepts "Upgrade|Downgrade <pkg> from <old> to <new>" and
// "Install <pkg>@<version> ...", each optionally ending in " [dev]".
// Anything else returns (nil, false).
func ParseSolution(desc string) (*Remediation, bool) {
	desc = strings.TrimSpace(desc)
	dev := strings.HasSuffix(desc, devMarker)
	desc = strings.TrimSuffix(desc, devMarker)

	if m := changePattern.FindStringSubmatch(desc); m != nil {
		return &Remediation{
			Kind:    Kind(strings.ToLower(m[1])),
			Package: m[2],
			From:    m[3],
			To:      m[4],
			Dev:     dev,
		}, true
	}
	if m := installPattern.FindStringSubmatch(desc); m != nil {
		at := strings.LastIndex(m[1], "@")
		if at <= 0 || at == len(m[1])-1 {
			return nil, false
		}
		return &Remediation{Kind: Install, Package: m[1][:at], To: m[1][at+1:], Dev: dev}, true
	}
	return nil, false
}

// Executor applies remediations to a project.
type Executor interface {
	Apply(ctx context.Context, r Remediation) error
}

// NPMExecutor runs "npm install" in Dir.
type NPMExecutor struct {
	Dir    string
	Bin    string // defaults to "npm"
	Stdout io.Writer
	Stderr io.Writer
}

// Apply runs npm with r.InstallArgs().
func (e *NPMExecutor) Apply(ctx context.Context, r Remediation) error {
	bin := e.Bin
	if bin == "" {
		bin = "npm"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("%s not found in PATH: %w", bin, err)
	}
	cmd := exec.CommandContext(ctx, bin, r.InstallArgs()...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", bin, strings.Join(r.InstallArgs(), " "), err)
	}
	return nil
}

// DryRunExecutor records remediations without applying them.
type DryRunExecutor struct {
	Out     io.Writer
	Applied []Remediation
}

func (e *DryRunExecutor) Apply(_ context.Context, r Remediation) error {
	e.Applied = append(e.Applied, r)
	if e.Out != nil {
		fmt.Fprintf(e.Out, "npm %s\n", strings.Join(r.InstallArgs(), " "))
	}
	return nil
}
