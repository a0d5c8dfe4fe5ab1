// Package timer implements the gRPC transport for the pose timer service.
//
// Messages are plain Go structs encoded with CBOR. The service descriptor and
// the client stub are written by hand and select the cbor codec on every
// call, so other services on the same connection (health checks) keep their
// protobuf encoding.
package timer
