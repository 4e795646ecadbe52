// package http contains the request and response types, which are meant
// to be exported. the package name is meant to be same with the top
// level package name so that IDEs and code editors could pick them up
//
// unlike [net/http.Header], [Header] keeps fields in wire order and
// allows duplicates, which is what a byte-exact request writer and an
// incremental response parser need.
package http
