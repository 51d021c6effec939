// Package memstore provides an in-process session storage.
//
// Entries are spread over murmur3-hashed shards, each guarded by its own mutex, and the
// same map backs the spin lock keys. It is meant for single-instance deployments and tests:
// nothing survives a restart and nothing is shared between processes.
//
//	store := memstore.New(kvstore.DefaultConfig(), memstore.WithCleanupInterval(time.Minute))
//	g.Go(store.Run(ctx))
package memstore
