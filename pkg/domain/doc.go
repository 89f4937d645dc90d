// Package domain contains the core types shared by the orchestration
// engine and its adapters: the per-run shared context, progress events,
// routing actions and job records.
//
// Nothing in this package performs I/O. Adapters depend on domain; domain
// depends on nothing but the standard library (and mapstructure for
// metadata decoding).
package domain
