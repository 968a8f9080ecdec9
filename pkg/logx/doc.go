// Package logx is the structured logger used across taskloop.
//
// It is a small value-type wrapper (logx.Logger) over zerolog:
//   - the zero value is a safe no-op, so components can take a Logger in
//     their Config without forcing callers to configure logging
//   - console output is human readable (short timestamp + short caller)
//   - file output is JSON, one event per line
package logx
