package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("relay"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.records.Set(3)
				manager.ingestTotal.WithLabelValues("stored").Inc()

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_relay_records")
				So(names, ShouldContain, "test_relay_ingest_total")
			})

			Convey("And gauges reflect the last value set", func() {
				manager.records.Set(7)
				So(testutil.ToFloat64(manager.records), ShouldEqual, 7)
			})
		})

		Convey("When registering twice on the same registry", func() {
			registry := prometheus.NewRegistry()
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then promauto panics on the duplicate", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording relay metrics", func() {
			before := testutil.ToFloat64(globalManager.ingestTotal.WithLabelValues("stored"))
			RecordIngest("stored")
			RecordIngest("stored")

			Convey("Then the ingest counter advances", func() {
				So(testutil.ToFloat64(globalManager.ingestTotal.WithLabelValues("stored")), ShouldEqual, before+2)
			})

			Convey("And the record gauge is settable", func() {
				UpdateRecordCount(42)
				So(testutil.ToFloat64(globalManager.records), ShouldEqual, 42)
			})
		})

		Convey("When recording the remaining collectors", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordOverwrite()
					RecordAttendees(12)
					RecordLookup("latest", "hit")
					RecordMirrorWrite("ok")
					RecordMirrorLatency(1.5)
					UpdateMirrorQueueSize(3)
					UpdateMirrorQueueCapacity(1024)
					UpdateMirrorWorkers(2)
					RecordHTTPRequest("data_latest", "GET", "200")
					RecordHTTPRequestDuration("data_latest", "GET", "200", 2)
					RecordErrorByEndpoint("webhook", "POST", "client_error")
					RecordErrorByComponent("mirror", "write_failed")
					RecordSubmission("accepted")
					RecordPollAttempt("pending")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(10)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then it is the custom one", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
