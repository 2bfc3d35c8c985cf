package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/gg"

	"CanvasEditor/internal/config"
	"CanvasEditor/internal/lan"
	"CanvasEditor/internal/store"
	"CanvasEditor/internal/ui"
	"CanvasEditor/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default: the data directory)")
	desktopMode := flag.Bool("desktop", false, "open a desktop window instead of serving browsers")
	addr := flag.String("addr", "", "listen address, overrides the config file")
	discover := flag.Bool("discover", false, "list editors on the local network and exit")
	flag.Parse()

	gg.SetLogger(slog.Default())

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[MAIN] Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if *discover {
		runDiscover()
		return
	}

	db := openStore(cfg)
	var kv store.KV
	if db != nil {
		defer db.Close()
		kv = db
	}

	if *desktopMode {
		log.Println("[MAIN] Starting desktop editor")
		err = ui.Run(ui.Options{Config: cfg, KV: kv, StorageOK: db != nil && db.Probe()})
	} else {
		err = runServer(cfg, kv)
	}
	if err != nil {
		log.Fatalf("[MAIN] %v", err)
	}
}

// openStore opens the local database. Without one the editor still runs,
// only usage events and the first-run flag are not kept.
func openStore(cfg *config.Config) *store.Store {
	path := cfg.DatabasePath()
	if path == "" {
		log.Println("[MAIN] Storage disabled")
		return nil
	}
	db, err := store.Open(path)
	if err != nil {
		log.Printf("[MAIN] Storage unavailable, continuing without it: %v", err)
		return nil
	}
	return db
}

func runServer(cfg *config.Config, kv store.KV) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shareURL, port, err := lan.ShareURL(cfg.Server.Addr)
	if err != nil {
		return err
	}
	if cfg.Server.Advertise {
		ad, err := lan.Advertise(port, shareURL)
		if err != nil {
			log.Printf("[MAIN] LAN advertising disabled: %v", err)
		} else {
			defer ad.Shutdown()
		}
	}

	log.Printf("[MAIN] Canvas editor ready at %s", shareURL)
	srv := web.NewServer(web.Options{Config: cfg, KV: kv, ShareURL: shareURL})
	return srv.ListenAndServe(ctx)
}

func runDiscover() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	peers, err := lan.Browse(ctx, 3*time.Second)
	if err != nil {
		log.Printf("[MAIN] Discovery failed: %v", err)
	}
	if len(peers) == 0 {
		fmt.Println("No editors found on the local network.")
		return
	}
	for _, p := range peers {
		link := p.Addr
		if len(p.Info) > 0 {
			link = p.Info[0]
		}
		fmt.Printf("%s\t%s\n", p.Name, link)
	}
}
