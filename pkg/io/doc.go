// Package io provides JSON import and export for scan reports.
//
// # Overview
//
// A [Report] is the self-contained record of one scan: graph statistics,
// every conflict with its solutions, and the issues hit along the way. It
// is what `peerscan scan --json` prints and what `peerscan fix --from`
// reads back, so a scan run in CI can be applied later on a workstation.
//
// # JSON Format
//
//	{
//	  "id": "5f0c6b1e-8d7a-4c2e-9b1f-2a3c4d5e6f70",
//	  "generatedAt": "2026-10-15T09:30:00Z",
//	  "tool": "peerscan/v0.3.0",
//	  "project": "my-app",
//	  "stats": {"totalNodes": 412, "directDependencies": 18, "devDependencies": 9, "maxDepth": 7},
//	  "conflicts": [
//	    {
//	      "type": "peer-dependency",
//	      "packageName": "react",
//	      "message": "react-redux@7.2.9 requires peer react@^16.8.3 || ^17, but react@18.2.0 is installed",
//	      "nodes": [{"path": "node_modules/react-redux", "name": "react-redux", "version": "7.2.9"}],
//	      "solutions": [{"description": "Downgrade react from 18.2.0 to 17.0.2", "action": {...}}]
//	    }
//	  ],
//	  "issues": [],
//	  "unresolved": []
//	}
//
// Conflict nodes are flattened to path/name/version references; the graph
// itself is not embedded.
package io
