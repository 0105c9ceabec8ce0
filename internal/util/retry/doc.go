// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay, and maximum delay. It is used around Proxmox
// API connection checks and release lookups, which may fail transiently.
package retry
