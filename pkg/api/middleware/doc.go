// Package middleware provides the HTTP middleware of the map-data API.
//
// Every middleware has the form func(http.Handler) http.Handler so they
// chain by nesting:
//
//	handler := middleware.PanicRecovery(logger)(mux)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
package middleware
