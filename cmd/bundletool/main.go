// bundletool packs data files into GUID-stamped bundles and verifies
// existing ones.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/gridfire/arena/internal/assets"
	"github.com/gridfire/arena/internal/data"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	in := flag.String("in", "", "input file to pack")
	out := flag.String("out", "", "bundle to write")
	guidHex := flag.String("guid", "", "bundle guid (32 hex chars); generated when empty")
	check := flag.String("check", "", "bundle to verify instead of packing")
	flag.Parse()

	if *check != "" {
		if *guidHex == "" {
			return fmt.Errorf("-check requires -guid")
		}
		guid, err := assets.ParseGUID(*guidHex)
		if err != nil {
			return err
		}
		payload, err := assets.Load(*check, guid)
		if err != nil {
			return err
		}
		// Bundles carry entity definitions today; parse to prove the
		// payload is usable, not just intact.
		tbl, err := data.ParseEntityTable(payload)
		if err != nil {
			return fmt.Errorf("payload invalid: %w", err)
		}
		fmt.Printf("ok: %d bytes, %d entity kinds\n", len(payload), tbl.Count())
		return nil
	}

	if *in == "" || *out == "" {
		return fmt.Errorf("need -in and -out (or -check)")
	}
	payload, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	if _, err := data.ParseEntityTable(payload); err != nil {
		return fmt.Errorf("refusing to pack invalid entity defs: %w", err)
	}

	var guid assets.GUID
	if *guidHex != "" {
		if guid, err = assets.ParseGUID(*guidHex); err != nil {
			return err
		}
	} else {
		if _, err := rand.Read(guid[:]); err != nil {
			return err
		}
	}

	if err := assets.Save(*out, guid, payload); err != nil {
		return err
	}
	fmt.Printf("wrote %s guid=%s\n", *out, hex.EncodeToString(guid[:]))
	return nil
}
