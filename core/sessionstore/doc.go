// Package sessionstore resolves a session storage backend from configuration.
//
// Three backends are available:
//
//   - cookie: the payload travels encrypted inside the cookie (cookiestore)
//   - memory: a sharded in-process map with a cleanup loop (memstore)
//   - redis: a shared Redis instance (redisstore)
//
// Memory and Redis records are keyed prefix:encode(id) and guarded by a spin lock on
// prefix:encode(id).lock (see pkg/spinlock).
//
//	backend, err := sessionstore.New(ctx, cfg, sessionstore.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer backend.Shutdown()
//	g.Go(backend.Run(ctx))
//
//	manager, err := session.NewManager[UserData](sessionCfg, backend)
package sessionstore
