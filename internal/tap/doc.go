// Package tap implements the tap-extension subsystem: the registry of tap
// links persisted in the global configuration, and the loader for a tap's
// custom task module.
//
// # Taps
//
// A tap is an external, independently maintained repository linked into the
// runner through the global config. Each link records the tap's name, its
// filesystem location, and, when the repository contributes one, the path of
// its custom task entry file.
//
// # Registration
//
// Register composes a link from an existing registration and a new location:
//
//	link, err := tap.Register(store, silent, "mytap", "/repos/mytap", confirm)
//	if errors.Is(err, tap.ErrOverwriteDeclined) {
//		// operator kept the existing link; nothing was mutated
//	}
//
// Relinking an already-linked tap prompts for confirmation. In silent mode
// the prompt is treated as declined: silent never overwrites. The composed
// link is persisted separately with AddLink.
//
// # Custom task modules
//
// A tap contributes tasks through a tasks/index.js module anywhere in its
// tree. The module's exports are either a static mapping of task
// definitions or a factory function receiving the resolution context:
//
//	module.exports = function (ctx) {
//		return {
//			deploy: {
//				description: "deploy " + ctx.command,
//				options: { env: { default: "staging", alias: ["e"] } },
//				exec: "./scripts/deploy.sh",
//			},
//		};
//	};
//
// Task entries may declare an action function (run in the embedded
// JavaScript runtime) or an exec shell string (run in the tap's directory).
// A malformed module is fatal to the process: the merged task set cannot be
// partially trusted, so the CLI logs the offending path and exits non-zero.
package tap
