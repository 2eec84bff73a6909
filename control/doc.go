// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, logging, metrics and debug introspection for hioload-kv.
//
// Provides:
//   - YAML config loading over defaults, and a store with reload listeners
//   - zap logger construction from the config
//   - prometheus collectors on a private registry
//   - named debug probes
package control
