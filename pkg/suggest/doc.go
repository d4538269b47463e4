// Package suggest picks package versions that can be installed together.
//
// [Engine.Check] takes a list of package names, looks up their latest
// versions and the peer dependencies those versions declare, and finds one
// version of each peer acceptable to every requester. The search walks the
// peer's published versions from newest to oldest and tests each against
// every range; it never reasons about range intervals directly. When no
// version satisfies all ranges the result carries a conflict message naming
// them instead of picking one.
//
//	engine := suggest.NewEngine(npmClient, logger)
//	res := engine.Check(ctx, []string{"react-redux", "@reduxjs/toolkit"})
//	if !res.Compatible {
//	    for _, c := range res.Conflicts {
//	        fmt.Println(c)
//	    }
//	}
//	fmt.Println(res.InstallCommand) // npm install react-redux@9.1.0 ...
//
// [Engine.Audit] flags declared dependencies a major version behind
// latest. [Engine.BestVersion] is the shared intersection search, also used
// by the conflict analyzer.
package suggest
