// Package metrics exports session engine activity to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	obs, err := metrics.NewObserver(reg)
//	if err != nil {
//		return err
//	}
//	manager, err := session.NewManager[UserData](cfg, storage, session.WithObserver(obs))
//	mux.Handle("/metrics", metrics.Handler(reg))
//
// Open reports present, fresh or rejected. Every other operation reports ok, error or
// lock_timeout.
package metrics
