// Command replay prints the committed event stream from one or more
// events-*.jsonl.zst files, oldest file first.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	persistlog "landlords.game/internal/persistence/log"
)

func main() {
	var (
		eventsDir  = flag.String("events", "./data/events", "events dir containing events-*.jsonl.zst")
		fromCursor = flag.Uint64("from_cursor", 0, "print events with cursor > from_cursor")
		kind       = flag.String("type", "", "only print events of this type (optional)")
	)
	flag.Parse()

	files, err := filepath.Glob(filepath.Join(*eventsDir, "events-*.jsonl.zst"))
	if err != nil || len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no event files in", *eventsDir)
		os.Exit(2)
	}
	sort.Strings(files)

	total := 0
	for _, f := range files {
		err := persistlog.ReadEventFile(f, func(e persistlog.EventEntry) error {
			if e.Cursor <= *fromCursor {
				return nil
			}
			if *kind != "" {
				if t, _ := e.Event["type"].(string); t != *kind {
					return nil
				}
			}
			b, err := json.Marshal(e.Event)
			if err != nil {
				return err
			}
			fmt.Printf("%d\t%s\n", e.Cursor, b)
			total++
			return nil
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", f, err)
			os.Exit(1)
		}
	}
	fmt.Fprintf(os.Stderr, "%d events\n", total)
}
