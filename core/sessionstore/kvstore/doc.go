// Package kvstore adapts any TTL key-value backend into a session.Storage.
//
// It owns the key layout and the locking protocol so backends only provide
// Get, Set, Expire, SetNX and Del. Open takes the record lock around the read,
// Start takes it until Save(close), Close or Destroy release it.
package kvstore
