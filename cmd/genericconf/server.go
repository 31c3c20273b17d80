// Copyright 2024-2026, Mica Labs, Inc.
// For license information, see https://github.com/micalabs/mica/blob/master/LICENSE.md

package genericconf

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/ethereum/go-ethereum/log"
)

func StartPprof(address string) {
	mux := http.NewServeMux()
	mux.Handle("/debug/pprof/", http.HandlerFunc(pprof.Index))
	mux.Handle("/debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
	mux.Handle("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
	mux.Handle("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
	mux.Handle("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))
	log.Info("Starting pprof server", "addr", "http://"+address+"/debug/pprof")
	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 30 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Pprof server failed", "err", err)
		}
	}()
}
