// Package target enumerates deployment targets: known platform installs
// and ad-hoc project directories, each bound to one config store.
package target
