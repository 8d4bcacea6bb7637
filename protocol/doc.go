// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Implements the client side of the WebSocket upgrade exchange (RFC 6455) for
// non-blocking transports that deliver the server response in arbitrary chunks.
//
// Includes:
//   - UpgradeParser: incremental 101 response parser with exact leftover bytes
//   - Header block tokenizer with a bounded header count
//   - Dual terminator search ("\r\n\r\n" preferred, "\n\n" tolerated)
//   - Request serialization and Sec-WebSocket-Accept verification helpers
//
// The parser performs no I/O and holds no locks; one instance serves one
// connection and is discarded afterwards.
package protocol
