package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthFailures は認証失敗の件数。reasonは失敗の種類。
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flashquiz_auth_failures_total",
		Help: "Number of rejected requests by authentication failure reason.",
	}, []string{"reason"})

	// Generations はフラッシュカード生成の件数。outcomeは結果。
	Generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flashquiz_generations_total",
		Help: "Number of flashcard generation requests by outcome.",
	}, []string{"outcome"})
)
