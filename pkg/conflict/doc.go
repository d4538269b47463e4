// Package conflict detects dependency conflicts in an installed npm tree.
//
// # Conflict Types
//
// [PeerDependency]: a package declares a peer range and either nothing by
// that name is installed, or the installed copy falls outside the range.
// The installed copy is the top-level one if present, otherwise the first
// by path.
//
// [DuplicateSingleton]: a package from the singleton list (UI framework
// cores and similar, see [DefaultSingletons]) is installed at two or more
// different major versions.
//
// # Solutions
//
// Each conflict carries ranked [Solution]s computed from registry data.
// Their descriptions use fixed templates:
//
//	Upgrade react from 16.14.0 to 17.0.2
//	Downgrade react from 18.2.0 to 17.0.2
//	Install react@17.0.2 to satisfy ^17.0.0 required by react-redux
//	Install react@latest (may require updates)
//	Install react@18.2.0 to consolidate all instances
//
// A trailing " [dev]" marks dev dependencies. [ParseSolution] recovers the
// [Remediation] from a description; an [Executor] applies it.
//
// # Failure Model
//
// [Analyzer.Analyze] always returns a report. Registry failures and
// unparseable versions are recorded as issues on the [Report] and only
// cost the affected solution.
package conflict
