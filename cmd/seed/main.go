package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/MauroRinelli/Solship/config"
	"github.com/MauroRinelli/Solship/pkg/datastore"
	"github.com/MauroRinelli/Solship/pkg/redis"
)

func main() {
	storeKind := flag.String("store", "local", "target store: local or api")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: go run cmd/seed/main.go [-store=local|api] [-yes] <snapshot_json_path>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	raw, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal("Failed to read snapshot file:", err)
	}

	var snapshot datastore.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		log.Fatal("Failed to parse snapshot:", err)
	}

	cfg.Datastore.Variant = *storeKind
	store, err := datastore.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize store:", err)
	}
	defer redis.Close()

	fmt.Printf("Snapshot: %d destinations, %d shipments (version %s)\n",
		len(snapshot.Destinations), len(snapshot.Shipments), snapshot.Version)

	if !*yes {
		fmt.Printf("Import into the %s store? This replaces existing data. (yes/no): ", *storeKind)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if err := store.Import(context.Background(), &snapshot); err != nil {
		log.Fatal("Import failed:", err)
	}

	fmt.Println("Import completed.")
}
