// Package metrics 服务核心业务指标（Prometheus）
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MedalWrites 写操作计数，按操作类型与结果区分
	MedalWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medalboard",
		Name:      "medal_writes_total",
		Help:      "Medal write operations by op (create/update/delete) and result (ok/error/not_found/invalid).",
	}, []string{"op", "result"})

	// QuadroCacheHits 奖牌榜缓存命中
	QuadroCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medalboard",
		Name:      "quadro_cache_hits_total",
		Help:      "Ranked table reads served from the redis cache.",
	})

	// QuadroCacheMisses 奖牌榜缓存未命中（回源数据库）
	QuadroCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "medalboard",
		Name:      "quadro_cache_misses_total",
		Help:      "Ranked table reads recomputed from the database.",
	})
)
