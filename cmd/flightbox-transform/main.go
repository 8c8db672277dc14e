/*
	flightbox-transform: ingests SBS-1, OGN/APRS, and NMEA-0183 feeds and
	emits FLARM-compatible PFLAA/PFLAU sentences (spec §1). This binary
	wires the transformation module to stdin (one content-tagged line per
	input source is out of scope here; feeds are expected to already be
	tagged upstream) and exposes Prometheus metrics for observability.
*/

package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/biturbo/flightbox-transform/internal/altimeter"
	"github.com/biturbo/flightbox-transform/internal/config"
	"github.com/biturbo/flightbox-transform/internal/datahub"
	"github.com/biturbo/flightbox-transform/internal/metrics"
	"github.com/biturbo/flightbox-transform/internal/transform"
)

// processName matches the name the watchdog collaborator expects to find
// when it enumerates running FlightBox processes (spec.md's supplemented
// features, informed by original_source/flightbox_watchdog.py). Go has no
// portable setproctitle equivalent and none of the example repos bind one,
// so rather than fabricate a dependency this binary just logs the name the
// watchdog looks for; the watchdog's own process-table match is unaffected
// since cmd/flightbox-transform's argv[0] is already its binary name.
const processName = "flightbox_transformation_sbs1ognnmea_flarm"

var log = logrus.WithField("component", "main")

func main() {
	startedAt := time.Now()
	log.WithField("process_name", processName).Info("starting")
	configPath := flag.String("config", "/etc/flightbox/transform.ini", "path to the INI configuration file")
	metricsAddr := flag.String("metrics-addr", ":9120", "address to serve Prometheus metrics on")
	logLevel := flag.String("log-level", "info", "logrus level: debug, info, warn, error")
	queueCapacity := flag.Int("queue-capacity", 256, "buffer capacity of the inbound and outbound datahub queues")
	flag.Parse()

	if lvl, err := logrus.ParseLevel(*logLevel); err == nil {
		logrus.SetLevel(lvl)
	} else {
		log.WithError(err).Warn("unrecognised -log-level, keeping default")
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("could not load configuration, refusing to start")
	}
	log.WithFields(logrus.Fields{"my_icao": cfg.MyICAO, "my_tail": cfg.MyTail, "modec_det": cfg.ModeCDet}).Info("configuration loaded")

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	go serveMetrics(*metricsAddr, reg)

	in := datahub.NewChannelQueue(*queueCapacity)
	out := datahub.NewChannelQueue(*queueCapacity)

	alt := altimeter.Static(0) // no barometric sensor wired in this binary; see internal/altimeter

	module := transform.New(in, out, cfg, alt)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received, closing input queue")
		in.Close()
	}()

	go drainOutbound(out)
	go readStdinIntoQueue(ctx, in)

	if err := module.Run(ctx); err != nil {
		log.WithError(err).Fatal("transformation module exited with error")
	}
	log.WithField("started", humanize.Time(startedAt)).Info("shutdown complete")
}

// serveMetrics serves /metrics over h2c (HTTP/2 without TLS) so a scraper on
// the same trusted link as the rest of this embedded receiver's status
// endpoints isn't limited to HTTP/1.1.
func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.WithField("addr", addr).Info("serving metrics")
	h2s := &http2.Server{}
	if err := http.ListenAndServe(addr, h2c.NewHandler(mux, h2s)); err != nil {
		log.WithError(err).Error("metrics server stopped")
	}
}

// drainOutbound logs every outbound FLARM sentence; a real deployment
// would instead publish these to the Datahub pub/sub fabric (spec §1,
// out of scope here).
func drainOutbound(out *datahub.ChannelQueue) {
	ctx := context.Background()
	for {
		item, ok, err := out.Get(ctx)
		if err != nil || !ok {
			return
		}
		fmt.Print(item.Payload)
	}
}

// readStdinIntoQueue reads tagged input lines of the form
// "<content_type>\t<payload>" from stdin and pushes them onto in. This is
// a minimal harness for exercising the module from the command line; a
// production deployment wires feeds directly to the Datahub (spec §1).
func readStdinIntoQueue(ctx context.Context, in *datahub.ChannelQueue) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			log.WithField("line", line).Warn("stdin: expected '<content_type>\\t<payload>', dropping")
			continue
		}
		if err := in.Put(ctx, datahub.Item{ContentType: parts[0], Payload: parts[1]}); err != nil {
			log.WithError(err).Warn("stdin: failed to enqueue input item")
		}
	}
}
