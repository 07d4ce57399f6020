package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registerOnce     sync.Once
	insightsTotal    *prometheus.CounterVec
	textgenRequests  *prometheus.CounterVec
	textgenDuration  *prometheus.HistogramVec
	fallbacksTotal   *prometheus.CounterVec
	moodsTotal       *prometheus.CounterVec
	activityLogTotal *prometheus.CounterVec
)

const namespaceMetrics = "portal"

// MustRegister 注册业务指标与 Go 运行时采集器，启动阶段调用一次即可。
func MustRegister() {
	registerOnce.Do(func() {
		insightsTotal = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespaceMetrics,
				Subsystem: "wellness",
				Name:      "insights_total",
				Help:      "健康洞察的计算次数，按风险等级统计。",
			},
			[]string{"risk_level"},
		))
		textgenRequests = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespaceMetrics,
				Subsystem: "textgen",
				Name:      "requests_total",
				Help:      "外部文本生成调用次数，按功能与结果统计。",
			},
			[]string{"feature", "result"},
		))
		textgenDuration = registerHistogramVec(prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespaceMetrics,
				Subsystem: "textgen",
				Name:      "duration_seconds",
				Help:      "外部文本生成调用耗时。",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"feature"},
		))
		fallbacksTotal = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespaceMetrics,
				Subsystem: "textgen",
				Name:      "fallbacks_total",
				Help:      "文本生成失败后走规则兜底的次数。",
			},
			[]string{"feature"},
		))
		moodsTotal = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespaceMetrics,
				Subsystem: "wellbeing",
				Name:      "mood_classifications_total",
				Help:      "问卷情绪分类结果，按情绪与来源（ai/fallback/override）统计。",
			},
			[]string{"mood", "source"},
		))
		activityLogTotal = registerCounterVec(prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespaceMetrics,
				Subsystem: "activity",
				Name:      "logs_total",
				Help:      "活动记录写入次数，按类型与结果（created/closed/dropped/error）统计。",
			},
			[]string{"activity_type", "result"},
		))

		registerRuntimeCollectors()
	})
}

// RecordInsight 记录一次健康洞察。
func RecordInsight(riskLevel string) {
	if insightsTotal == nil {
		return
	}
	insightsTotal.WithLabelValues(normalizeLabel(riskLevel, "unknown")).Inc()
}

// ObserveTextGen 记录一次文本生成调用的结果与耗时。
func ObserveTextGen(feature, result string, duration time.Duration) {
	if textgenRequests == nil || textgenDuration == nil {
		return
	}
	featureLabel := normalizeLabel(feature, "unspecified")
	textgenRequests.WithLabelValues(featureLabel, normalizeLabel(result, "unknown")).Inc()
	textgenDuration.WithLabelValues(featureLabel).Observe(duration.Seconds())
}

// RecordFallback 记录一次规则兜底。
func RecordFallback(feature string) {
	if fallbacksTotal == nil {
		return
	}
	fallbacksTotal.WithLabelValues(normalizeLabel(feature, "unspecified")).Inc()
}

// RecordMood 记录情绪分类结果。
func RecordMood(mood, source string) {
	if moodsTotal == nil {
		return
	}
	moodsTotal.WithLabelValues(normalizeLabel(mood, "unknown"), normalizeLabel(source, "unknown")).Inc()
}

// RecordActivity 记录活动日志写入。
func RecordActivity(activityType, result string) {
	if activityLogTotal == nil {
		return
	}
	activityLogTotal.WithLabelValues(normalizeLabel(activityType, "unknown"), normalizeLabel(result, "unknown")).Inc()
}

func normalizeLabel(value string, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return strings.ToLower(trimmed)
	}
	return fallback
}

func registerCounterVec(vec *prometheus.CounterVec) *prometheus.CounterVec {
	if err := prometheus.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}

func registerHistogramVec(vec *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := prometheus.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
		panic(err)
	}
	return vec
}

func registerRuntimeCollectors() {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
