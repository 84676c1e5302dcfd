package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"assettrack/internal/netx"
)

func (a *App) list(ctx context.Context) {
	pairs, err := a.pairs.List(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}

	if len(pairs) == 0 {
		fmt.Println("No scanned pairs.")
		return
	}

	for _, p := range pairs {
		fmt.Printf("%s  %-12s %-20s %-10s %s\n",
			p.ID, p.AssetTag, p.Serial, p.Status, p.ScannedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

func (a *App) delete(ctx context.Context, args []string) {
	var id string
	if len(args) > 0 {
		id = args[0]
	} else {
		v, err := getSimpleText(a.reader, "Enter pair id to delete", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
		id = v
	}

	if err := a.pairs.Delete(ctx, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	fmt.Println("Pair removed from the queue.")
}

// syncNow snapshots pending scans into a batch and, when the authority is
// reachable, drains the queue and refreshes the tag cache in one go.
func (a *App) syncNow(ctx context.Context) {
	batch, err := a.sync.Submit(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	if batch != nil {
		fmt.Printf("Batch %s: %d pair(s), status %s\n", batch.ID, len(batch.Items), batch.Status)
		if batch.ErrorMessage != "" {
			fmt.Println("  " + batch.ErrorMessage)
		}
	}

	if a.probeNow(ctx) != netx.StateOnline {
		fmt.Println("Authority unreachable, queued batches upload automatically when back online.")
		return
	}

	if err := a.sync.Drain(ctx); err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	if err := a.sync.Refresh(ctx); err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	fmt.Println("Sync complete.")
}

func (a *App) status(ctx context.Context) {
	fmt.Printf("Connectivity: %s\n", a.probeNow(ctx))
	if a.isLoggedIn() {
		fmt.Printf("Logged in as: %s\n", a.userName)
	} else {
		fmt.Println("Not logged in.")
	}

	pairs, err := a.pairs.List(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	counts := map[string]int{}
	for _, p := range pairs {
		counts[string(p.Status)]++
	}
	fmt.Printf("Pairs: %d pending, %d uploaded, %d failed\n",
		counts["pending"], counts["uploaded"], counts["error"])
}
