// Package cookiestore is the client-side session storage: the encrypted payload is the
// third field of the cookie and the server keeps no state.
package cookiestore
