/*
Package monitoring provides Prometheus metrics for the form server.

# Overview

Metrics implements form.Observer and the controller's dispatch observer, so
the factory and every controller report extraction, rendering and action
dispatch without knowing about Prometheus. The HTTP middleware records
request counts, latency and sizes per route.

# Usage

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	f := form.NewFactory(form.WithObserver(metrics))
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
