// package transport contains incremental parsers for the *message syntax*
// of an HTTP/1.1 response as defined by HTTP/1.1 (RFC9112).
//
// the parsers never block and never own the input: each call to Parse
// consumes as much of the given slice as it can, copies whatever it has to
// remember, and hands back the unconsumed tail. this is what lets the fetch
// state machine feed them straight from a reused read buffer.
//
// semantics (RFC9110) are limited to what framing needs, see [ContentLength]
// and [BodyAllowed].

package transport
