// Package server wraps http.Server with graceful shutdown and a small
// functional-options configuration surface. It is built for a local,
// loopback-only daemon: there is no TLS support, since the bridge never
// accepts traffic from outside the machine it runs on.
//
// # Basic Usage
//
//	srv := server.New(":0",
//		server.WithReadTimeout(15*time.Second),
//		server.WithShutdownTimeout(10*time.Second),
//	)
//
//	if err := srv.Start(ctx, handler); err != nil {
//		log.Fatal(err)
//	}
//
// # Config-driven construction
//
// NewFromConfig builds a Server from a Config, which core/config can fill
// from environment variables; zero fields keep the package defaults:
//
//	var cfg server.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	srv, err := server.NewFromConfig(cfg)
//
// # Graceful Shutdown
//
// Run returns a func() error suitable for errgroup.Group.Go, tying the
// server's lifetime to ctx cancellation:
//
//	g.Go(srv.Run(ctx, handler))
//
// WriteTimeout defaults to 0 (disabled): the log streaming endpoint holds
// its response open for as long as a client is subscribed, and a server-wide
// write deadline would cut it off mid-stream.
package server
