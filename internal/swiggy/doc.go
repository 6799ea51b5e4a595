// Package swiggy talks to the food-delivery web API under /dapi.
//
// # Executor
//
// Executor performs one logical call. It attaches the browser-like headers
// the API expects (User-Agent, Accept, Referer), the Cookie header built
// from the credential set and, for requests that ask for it, an
// Authorization bearer header. Every response is run through the
// creds.Extractor regardless of status, so renewed cookies are never lost.
//
// Responses are classified into three outcomes:
//
//   - OutcomeSuccess: 2xx with a JSON body
//   - OutcomeAuthPending: the configured pending-auth status (202 by
//     default). If that response refreshed the credentials the call is
//     retried once with them; otherwise, or if the retry is pending too,
//     the outcome carries an AUTH_EXPIRED error
//   - OutcomeFailure: transport errors, other statuses, undecodable bodies
//
// A logical call never makes more than two network requests. Transport
// errors are not retried.
//
// # Errors
//
// Errors are github.com/goliatone/go-errors envelopes:
//
//	TRANSPORT_ERROR  external     network failure
//	AUTH_EXPIRED     auth         pending-auth not resolved by a refresh
//	DECODE_ERROR     bad_input    body not JSON or an unknown layout
//	HTTP_<status>    operation    any other non-2xx; message from statusMessage
//
// Use IsAuthExpired, IsTransport, IsDecode and StatusCode instead of
// matching strings.
//
// # Client
//
// Client wraps the executor with typed calls (Search, Menu, OrderStatus,
// PlaceOrder, ActiveOrders). After every call it commits the returned
// credential set to its SessionHolder. Payloads whose layout varies are
// decoded by trying known shapes in order; ErrUnrecognizedShape means none
// matched.
package swiggy
