package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"assettrack/internal/common"
)

// Scan prompts for an asset tag and a serial, validates the pair against
// the local tag cache, and enqueues it as pending. Works fully offline.
//
// On an unknown tag the user is offered an inline confirmation; confirming
// registers the tag locally and retries the admission once.
func (a *App) Scan(ctx context.Context) error {
	fmt.Println("Scan asset tag")
	assetTag, err := a.scanner.Scan(ctx)
	if err != nil {
		if errors.Is(err, ErrScanCancelled) {
			fmt.Println("Scan cancelled.")
			return nil
		}
		return err
	}

	fmt.Println("Scan hardware serial")
	serial, err := a.scanner.Scan(ctx)
	if err != nil {
		if errors.Is(err, ErrScanCancelled) {
			fmt.Println("Scan cancelled.")
			return nil
		}
		return err
	}

	pair, err := a.pairs.Admit(ctx, assetTag, serial)
	if err == nil {
		fmt.Printf("Queued pair %s <-> %s (id %s)\n", pair.AssetTag, pair.Serial, pair.ID)
		return nil
	}

	var conflict *common.ConflictError
	switch {
	case errors.As(err, &conflict):
		fmt.Printf("Asset tag %s is already paired with serial %s.\n", conflict.Tag, conflict.ExistingSerial)
		fmt.Println("Use 'replace' to reassign it.")
		return err

	case errors.Is(err, common.ErrUnknownTag):
		fmt.Printf("Asset tag %s is not in the local registry.\n", assetTag)
		answer, aerr := getSimpleText(a.reader, "Add it as a new tag? (y/n)", os.Stdout)
		if aerr != nil {
			return aerr
		}
		if answer != "y" && answer != "yes" {
			fmt.Println("Scan discarded.")
			return err
		}
		if cerr := a.pairs.ConfirmTag(ctx, assetTag); cerr != nil {
			log.Printf("Error: %s", cerr.Error())
			return cerr
		}
		pair, rerr := a.pairs.Admit(ctx, assetTag, serial)
		if rerr != nil {
			log.Printf("Error: %s", rerr.Error())
			return rerr
		}
		fmt.Printf("Queued pair %s <-> %s (id %s)\n", pair.AssetTag, pair.Serial, pair.ID)
		return nil

	default:
		log.Printf("Error: %s", err.Error())
		return err
	}
}

// Confirm registers a tag in the local registry without scanning a pair,
// e.g. when new tags arrive ahead of the hardware. Usage: confirm <tag>.
func (a *App) Confirm(ctx context.Context, args []string) error {
	var tag string
	if len(args) > 0 {
		tag = args[0]
	} else {
		t, err := getSimpleText(a.reader, "Enter asset tag to register", os.Stdout)
		if err != nil {
			return err
		}
		tag = t
	}

	if err := a.pairs.ConfirmTag(ctx, tag); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	fmt.Printf("Tag %s registered locally, it uploads on the next sync.\n", tag)
	return nil
}
