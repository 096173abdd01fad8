package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductsCreated is a Prometheus counter for tracking the total number of products created.
	ProductsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_created_total",
		Help: "The total number of products created",
	})

	// ProductsRemoved is a Prometheus counter for tracking the total number of products soft-deleted.
	ProductsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "products_removed_total",
		Help: "The total number of products soft-deleted",
	})

	// RPCRequests counts dispatched RPC commands by command name and outcome.
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rpc_requests_total",
		Help: "The total number of handled RPC commands",
	}, []string{"command", "outcome"})
)
