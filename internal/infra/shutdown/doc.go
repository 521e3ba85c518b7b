// Package shutdown coordinates graceful process shutdown.
//
// A Handler waits for SIGINT, SIGTERM or an explicit Trigger, then runs the
// registered hooks in reverse registration order under a shared timeout.
//
//	h := shutdown.NewHandler(30 * time.Second)
//	h.OnShutdown(srv.Shutdown)
//	return h.Wait()
package shutdown
