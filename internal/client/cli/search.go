package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"assettrack/internal/common"
	"assettrack/internal/netx"
	"assettrack/internal/wire"
)

// search looks a pairing up on the authority. Online only: lookups need the
// authoritative record, not the local cache.
func (a *App) search(ctx context.Context) {
	if a.probeNow(ctx) != netx.StateOnline {
		fmt.Println("Search needs a connection to the authority.")
		return
	}

	assetTag, err := getSimpleText(a.reader, "Asset tag (leave empty to search by serial)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	var serial string
	if assetTag == "" {
		serial, err = getSimpleText(a.reader, "Hardware serial", os.Stdout)
		if err != nil {
			log.Printf("error: %v", err)
			return
		}
		if serial == "" {
			fmt.Println("Nothing to search for.")
			return
		}
	}

	result, err := a.remote.Search(ctx, assetTag, serial)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fmt.Println("No pairing found.")
		} else {
			log.Printf("Error: %s", err.Error())
		}
		return
	}

	fmt.Printf("Asset tag: %s (%s)\n", result.AssetTag, result.Status)
	if result.Serial != "" {
		fmt.Printf("Current serial: %s\n", result.Serial)
	}
	for _, h := range result.History {
		fmt.Printf("  %s  %s  by %s\n", h.AssignedAt.Local().Format("2006-01-02 15:04:05"), h.Serial, h.AssignedBy)
	}
}

// replace reassigns a pairing on the authority, preserving history.
func (a *App) replace(ctx context.Context) {
	if a.probeNow(ctx) != netx.StateOnline {
		fmt.Println("Replace needs a connection to the authority.")
		return
	}

	searchBy, err := getSimpleText(a.reader, "Find record by 'asset_tag' or 'serial'", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if searchBy != wire.SearchByAssetTag && searchBy != wire.SearchBySerial {
		fmt.Println("Must be 'asset_tag' or 'serial'.")
		return
	}

	value, err := getSimpleText(a.reader, "Value to find", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	newTag, err := getSimpleText(a.reader, "New asset tag (empty keeps the current one)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	newSerial, err := getSimpleText(a.reader, "New serial (empty keeps the current one)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	if newTag == "" && newSerial == "" {
		fmt.Println("Nothing to change.")
		return
	}

	resp, err := a.remote.Replace(ctx, wire.ReplaceRequest{
		SearchBy:    searchBy,
		Value:       value,
		NewAssetTag: newTag,
		NewSerial:   newSerial,
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			fmt.Println("No matching record on the authority.")
		} else {
			log.Printf("Error: %s", err.Error())
		}
		return
	}

	fmt.Println(resp.Message)

	// the replacement changed authoritative tag state; pull it in
	if err := a.sync.Refresh(ctx); err != nil {
		log.Printf("Error refreshing tag cache: %s", err.Error())
	}
}
