// The agent is the local replica of a shared document: it hosts a websocket
// hub for editor UIs on the LAN, keeps the document converged through the
// reconciliation engine, snapshots it to a local bbolt file, announces itself
// over mDNS, and optionally bridges to a cloud sync server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/grandcat/zeroconf"
	"github.com/sirupsen/logrus"

	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/client"
	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/doc"
	"github.com/TheCatArt/Real-time-Collaborative-Code-Editor/store"
)

// fanout broadcasts locally generated envelopes to LAN clients through the
// hub and, when configured, to the upstream sync server.
type fanout struct {
	hub      *Hub
	upstream *upstream
}

func (f *fanout) Broadcast(msg client.Message) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	if f.hub != nil {
		f.hub.broadcast <- data
	}
	if f.upstream != nil {
		f.upstream.send(data)
	}
	return nil
}

func startDiscovery(log *logrus.Logger, serviceName string, port int) {
	host, _ := os.Hostname()
	server, err := zeroconf.Register(
		fmt.Sprintf("%s-%s", "CollabText", host),
		serviceName,
		"local.",
		port,
		[]string{"txtv=0"},
		nil,
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to register mDNS service")
	}
	defer server.Shutdown()
	log.WithFields(logrus.Fields{"service": serviceName, "port": port}).Info("mDNS service registered")

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize mDNS resolver")
	}
	entries := make(chan *zeroconf.ServiceEntry)
	go func(results <-chan *zeroconf.ServiceEntry) {
		for entry := range results {
			log.WithFields(logrus.Fields{"peer": entry.Instance, "port": entry.Port}).Info("mDNS discovered peer")
		}
	}(entries)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := resolver.Browse(ctx, serviceName, "local.", entries); err != nil {
		log.WithError(err).Fatal("Failed to browse for mDNS services")
	}
	<-ctx.Done()
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	docID := env("DOC_ID", "test-doc")
	dataDir := env("DATA_DIR", ".")
	addr := env("AGENT_ADDR", ":8080")
	serverURL := os.Getenv("SERVER_URL") // e.g. ws://localhost:8081/ws/test-doc

	snapshots, err := store.OpenBolt(filepath.Join(dataDir, "collabtext.db"))
	if err != nil {
		log.WithError(err).Fatal("Failed to open snapshot store")
	}
	defer snapshots.Close()

	d, err := snapshots.LoadSnapshot(docID)
	if err == store.ErrNotFound {
		d = doc.New(docID, docID)
	} else if err != nil {
		log.WithError(err).Fatal("Failed to load snapshot")
	} else {
		log.WithField("version", d.Version).Info("Recovered document from snapshot")
	}

	out := &fanout{}
	engine := client.NewEngine(d, uuid.NewString(), out, logrus.NewEntry(log))
	hub := newHub(engine, log)
	out.hub = hub
	go hub.run()

	if serverURL != "" {
		up := newUpstream(serverURL, engine, hub, log)
		out.upstream = up
		go up.run()
	}

	go startDiscovery(log, "_collabtext._tcp", 8080)

	// Housekeeping: sweep expired pending operations and snapshot the
	// document so a crash loses at most a few seconds of convergence state.
	go func() {
		expire := time.NewTicker(2 * time.Second)
		snapshot := time.NewTicker(15 * time.Second)
		defer expire.Stop()
		defer snapshot.Stop()
		for {
			select {
			case <-expire.C:
				if n := engine.ExpirePending(); n > 0 {
					log.WithField("expired", n).Debug("Dropped expired pending operations")
				}
			case <-snapshot.C:
				if err := snapshots.SaveSnapshot(engine.Snapshot()); err != nil {
					log.WithError(err).Error("Failed to save snapshot")
				}
			}
		}
	}()

	fs := http.FileServer(http.Dir("../ui"))
	http.Handle("/", fs)
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})
	log.WithField("addr", addr).Info("Agent is running")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
