// Package forwarder bridges extension lifecycle notifications to a single
// target element.
//
// On Start the forwarder subscribes to the four management streams and then
// replays the current enumeration through the install handler. Each
// notification is handled on its own:
//
//   - install: target.Add(name, id, version, launchURL, enabled), apps only
//   - enable:  target.Enable(id), apps only
//   - disable: target.Disable(id), apps only
//   - uninstall: target.Remove(id), always, even for ids never added
//
// The target is resolved through the injected Resolver for every
// notification and never cached. When the resolver reports the target as
// unavailable the notification is queued and retried after RetryDelay;
// everything received while the queue is non-empty queues behind it so the
// target sees notifications in arrival order.
//
// Example usage:
//
//	reg := target.NewRegistry()
//	reg.Register(target.DefaultElementID, journal)
//
//	fwd := forwarder.New(reg.Resolver(target.DefaultElementID), forwarder.Options{
//		Logger: log,
//	})
//	if err := fwd.Start(hub); err != nil {
//		return err
//	}
//	defer fwd.Close()
package forwarder
