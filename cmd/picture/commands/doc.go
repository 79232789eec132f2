// Package commands defines the picture CLI and wires dependencies for subcommands.
//
// Commands
//
//   - generate   Generate <img>/<source> attributes for one or more images
//   - list       Print the configured pictures
//   - serve      Serve generated attributes over HTTP
//
// # Implementation
//
// The root command loads the settings from --config before any subcommand
// runs and builds the dependency graph from them: logger, storage provider,
// optional redis client, variant cache, metrics, resizer and generator.
// Subcommands share it through the package level app value, which is closed
// after the command returns.
package commands
