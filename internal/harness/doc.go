// Package harness runs scripted plms sessions against an in-process fake
// library API.
//
// A scenario is a YAML file describing a seeded catalog, an optional
// signed-in reader, a sequence of CLI invocations, and assertions over the
// API state and request log once the steps have run:
//
//	name: trash_roundtrip
//	user: reader@example.com
//	catalog: |
//	  items:
//	    - {type: DVD, title: Heat, year: 1995, runtime: 170}
//	steps:
//	  - run: [--yes, items, delete, "${Heat}"]
//	  - run: [items, restore, "${Heat}"]
//	    expect:
//	      stdout: ["Restored"]
//	assertions:
//	  - type: item_state
//	    item: Heat
//	    expect: {deleted: false}
//
// "${Title}" in a step argument expands to the id of the seeded item with
// that title. Every step runs a fresh root command with --api and --state
// pointing at the scenario's fake server and credential store, the same way
// a reader's shell would run successive commands.
//
// RunWithGolden additionally snapshots the transcript of every step under
// testdata/golden so output wording changes show up as diffs.
package harness
