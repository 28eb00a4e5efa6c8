// Package hash provides helpers for hashing and verifying strings.
//
// Typical usage here is identity redaction: log and publish only the keyed
// hash of an email address or phone number, never the raw value.
// Implementations live in this package behind a small interface.
package hash
