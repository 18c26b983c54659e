// Package api defines the request and response messages of the settleup v1
// RPC API.
//
// Messages are plain structs serialized as JSON. Money is always a decimal
// string with exactly two fractional digits ("12.50"); dates are "YYYY-MM-DD";
// timestamps are Unix seconds.
package api
