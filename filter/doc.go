// Package filter logs HTTP requests served by echo through an aspect.
//
// Handle adapts a typed handler: the bound request body is the parameter
// state and the response body is the result state.
//
//	f := filter.New(a, "orders")
//	e.POST("/orders", filter.Handle(f, svc.PlaceOrder))
//
// Middleware wraps plain echo handlers. Each route is identified by the
// service name, the HTTP method and the route path, and the request and
// response summaries are logged as state.
//
//	e.Use(f.Middleware())
package filter
