package printer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"gridsetter/models"
	"gridsetter/pipeline"
	"gridsetter/steam"
)

// Report prints one line per shortcut and one indented line per image type
func Report(w io.Writer, report *pipeline.Report) {
	for _, sc := range report.Shortcuts {
		bold.Fprintf(w, "%s", sc.Shortcut.AppName)
		faint.Fprintf(w, " (%d)", sc.GridID)
		if sc.Match != nil {
			faint.Fprintf(w, " → %s [%d]", sc.Match.Name, sc.Match.CatalogID)
		}
		fmt.Fprintln(w)

		for _, o := range sc.Types {
			label := fmt.Sprintf("%-5s", o.Type)
			switch o.Status {
			case pipeline.StatusWritten:
				green.Fprintf(w, "  ✓ %s", label)
				fmt.Fprintf(w, " %s\n", filepath.Base(o.Path))
			case pipeline.StatusAbsent, pipeline.StatusNoMatch:
				faint.Fprintf(w, "  - %s %s\n", label, o.Status)
			case pipeline.StatusCancelled:
				yellow.Fprintf(w, "  - %s %s\n", label, o.Status)
			default:
				red.Fprintf(w, "  ✗ %s", label)
				fmt.Fprintf(w, " %s: %s\n", o.Status, o.Error)
			}
		}
	}
}

// Summary prints the totals line and hints that follow a run
func Summary(w io.Writer, s pipeline.Summary) {
	fmt.Fprintf(w, "\nProcessed %d game(s): %d written, %d absent, %d without a match, %d failed",
		s.Shortcuts, s.Written, s.Absent, s.NoMatch, s.Failed)
	if s.Cancelled > 0 {
		fmt.Fprintf(w, ", %d cancelled", s.Cancelled)
	}
	fmt.Fprintln(w, ".")

	if s.Unavailable > 0 {
		yellow.Fprintf(w, "⚠️  SteamGridDB could not be reached for %d image(s); check your API key and network connection.\n", s.Unavailable)
	}
	if s.Written > 0 {
		green.Fprintln(w, "✓ Restart Steam to see the new artwork.")
	}
}

// Shortcuts prints a table of shortcuts with the artwork already present in
// their grid directory. Both maps are keyed by the shortcut's grid id, which is
// the stored appid when preferStored is set. A non-nil matches map adds the
// catalog match column.
func Shortcuts(w io.Writer, shortcuts []models.Shortcut, preferStored bool, existing map[uint32][]string, matches map[uint32]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if matches != nil {
		fmt.Fprintln(tw, "INDEX\tAPPID\tNAME\tARTWORK\tMATCH\tEXE")
	} else {
		fmt.Fprintln(tw, "INDEX\tAPPID\tNAME\tARTWORK\tEXE")
	}

	for _, sc := range shortcuts {
		id := sc.GridID(preferStored)
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t", sc.Index, id, sc.AppName, artworkColumn(id, existing[id]))
		if matches != nil {
			fmt.Fprintf(tw, "%s\t", matches[id])
		}
		fmt.Fprintln(tw, sc.Exe)
	}
	return tw.Flush()
}

// artworkColumn lists the image types that have a file on disk
func artworkColumn(appID uint32, files []string) string {
	var present []string
	for _, t := range models.AllImageTypes {
		name := t.Filename(appID)
		for _, f := range files {
			if f == name {
				present = append(present, string(t))
				break
			}
		}
	}
	if len(present) == 0 {
		return "-"
	}
	return strings.Join(present, ",")
}

// Skipped prints warnings for shortcut records of source that could not be used
func Skipped(w io.Writer, source string, skipped []steam.SkippedRecord) {
	for _, s := range skipped {
		yellow.Fprintf(w, "⚠️  %s: skipped %s\n", source, s)
	}
}
