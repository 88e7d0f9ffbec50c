package download

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"imgbind/data"
)

// Logger receives one call per session lifecycle event: request sent,
// request cancelled, response success, response error.
type Logger func(e data.Event)

// TextLogger returns a Logger that renders each event as a single line:
//
//	[prefix] 2016-06-14 18:23:05.560 Received 200 http://example.com/a.png
//
// The timestamp is UTC. Status code and error description appear only when
// present on the event.
func TextLogger(w io.Writer, prefix string) Logger {
	return func(e data.Event) {
		parts := []string{"[" + prefix + "]", time.Now().UTC().Format("2006-01-02 15:04:05.000"), e.Kind.Verb()}
		if e.StatusCode != nil {
			parts = append(parts, strconv.Itoa(*e.StatusCode))
		}
		parts = append(parts, e.URL)
		if e.Err != nil {
			parts = append(parts, e.Err.Error())
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
	}
}
