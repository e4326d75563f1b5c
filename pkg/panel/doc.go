// Package panel defines the Panel interface that every backend adapter
// implements, and the pieces adapters share.
//
// A Panel is stateless with respect to hosts and tokens: the host and the
// Session are passed to every call, so one instance per backend kind can
// serve any number of panels and sessions concurrently.
//
//	p, _ := panel.New(api.KindMarzban, panel.Config{Timeout: 10 * time.Second})
//	sess, err := p.Login(ctx, "https://panel.example.com", "admin", pw)
//	users, err := p.ListUsers(ctx, sess, api.FirstPage(50))
//
// Operations a backend does not expose return an unsupported error; the
// [Capabilities] of a Panel list what it supports, how it paginates, and
// how it addresses users and nodes. Adapters embed [Unsupported] and
// override what their backend offers, and embed [*Base] for HTTP plumbing.
//
// Adapters register themselves with [Register] from an init function. Import
// pkg/panel/all to make every backend available to [New].
package panel
