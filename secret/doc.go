// Package secret resolves credential values supplied through configuration.
//
// A value may be a literal, contain ${VAR} environment expansions, or be a
// reference of the form "secretref:<provider>:<ref>" resolved through a
// registered provider. Resolution happens once at startup; resolved values
// must never be logged.
package secret
